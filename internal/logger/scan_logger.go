package logger

import (
	"github.com/sirupsen/logrus"
)

// ScanLogger provides dedicated logging for edge and arbitrage scans.
type ScanLogger struct {
	*logrus.Entry
}

// NewScanLogger creates a new scan logger.
func NewScanLogger(baseLogger *logrus.Logger) *ScanLogger {
	if baseLogger == nil {
		baseLogger = NewDiscardLogger()
	}
	return &ScanLogger{
		Entry: baseLogger.WithField("component", "scanner"),
	}
}

// LogEdgeScan logs an edge scan summary.
func (sl *ScanLogger) LogEdgeScan(events, outcomesEvaluated, edgesFound, filtered int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"scan_type":          "edge",
		"events":             events,
		"outcomes_evaluated": outcomesEvaluated,
		"edges_found":        edgesFound,
		"outcomes_filtered":  filtered,
		"scan_duration_ms":   durationMs,
	}).Debug("Edge scan completed")
}

// LogArbitrageScan logs an arbitrage scan summary.
func (sl *ScanLogger) LogArbitrageScan(events, arbitragesFound int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"scan_type":        "arbitrage",
		"events":           events,
		"arbitrages_found": arbitragesFound,
		"scan_duration_ms": durationMs,
	}).Debug("Arbitrage scan completed")
}

// LogFilteredAnomaly logs an outcome dropped because its edge fell outside the sane band.
func (sl *ScanLogger) LogFilteredAnomaly(id string, fairProb, edgePercent float64) {
	sl.WithFields(logrus.Fields{
		"edge_id":      id,
		"fair_prob":    fairProb,
		"edge_percent": edgePercent,
		"reason":       "anomalous_edge",
	}).Debug("Outcome filtered as data anomaly")
}

// LogArbitrageFound logs a profitable cross-book combination.
func (sl *ScanLogger) LogArbitrageFound(id, match string, roi float64, books []string) {
	sl.WithFields(logrus.Fields{
		"arb_id": id,
		"match":  match,
		"roi":    roi,
		"books":  books,
	}).Info("Arbitrage opportunity found")
}

// LogScanRun logs the outcome of a full provider fetch + scan.
func (sl *ScanLogger) LogScanRun(scanID, sport string, events, edges, arbs int, cached bool) {
	sl.WithFields(logrus.Fields{
		"scan_id":    scanID,
		"sport":      sport,
		"events":     events,
		"edges":      edges,
		"arbitrages": arbs,
		"cached":     cached,
	}).Info("Scan run completed")
}
