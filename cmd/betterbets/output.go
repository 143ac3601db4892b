package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/scheduler"
	"github.com/yourusername/better-bets/internal/service"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func writeResult(w io.Writer, format string, result *service.ScanResult) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputTable, "":
		return writeTables(w, result)
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", format)
	}
}

func writeTables(w io.Writer, result *service.ScanResult) error {
	fmt.Fprintf(w, "Scan %s  sport=%s  events=%d  cached=%t\n\n", result.ScanID, result.Sport, result.Events, result.Cached)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EV%\tMATCH\tTIME\tBOOK\tMARKET\tOUTCOME\tODDS\tFAIR")
	for _, e := range result.EV {
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.EVPercent, e.Match, e.Time, e.BookName, e.MarketLabel,
			outcomeLabel(e), formatAmerican(e.Odds), formatAmerican(float64(e.FairAm)))
	}
	if len(result.EV) == 0 {
		fmt.Fprintln(tw, "-\tno edges\t\t\t\t\t\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROI%\tMATCH\tTIME\tLEGS\tSTAKES")
	for _, a := range result.Arbs {
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\n", a.ROI, a.Match, a.Time, legsLabel(a.Legs), stakesLabel(a.Stakes))
	}
	if len(result.Arbs) == 0 {
		fmt.Fprintln(tw, "-\tno arbitrage\t\t\t")
	}
	return tw.Flush()
}

func outcomeLabel(e models.EdgeRecord) string {
	if e.Point == nil {
		return e.OutcomeName
	}
	return fmt.Sprintf("%s %+g", e.OutcomeName, *e.Point)
}

func formatAmerican(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%g", v)
	}
	return fmt.Sprintf("%g", v)
}

func legsLabel(legs []models.ArbitrageLeg) string {
	parts := make([]string, len(legs))
	for i, l := range legs {
		parts[i] = fmt.Sprintf("%s %s @ %s", l.Name, formatAmerican(l.Odd), l.Book)
	}
	return strings.Join(parts, ", ")
}

func stakesLabel(stakes []models.StakeSplit) string {
	parts := make([]string, len(stakes))
	for i, st := range stakes {
		parts[i] = fmt.Sprintf("%.2f", st.Stake)
	}
	return strings.Join(parts, " / ")
}

// topOpportunitiesLogger logs the best n edges and every arbitrage of each
// watch pass; nextRun may be nil
func topOpportunitiesLogger(log *logrus.Logger, n int, nextRun func() time.Time) scheduler.ResultHandler {
	return func(req service.ScanRequest, result *service.ScanResult) {
		entry := log.WithFields(logrus.Fields{
			"scan_id": result.ScanID.String(),
			"sport":   req.Sport,
		})

		top := result.EV
		if n > 0 && len(top) > n {
			top = top[:n]
		}
		for i, e := range top {
			entry.WithFields(logrus.Fields{
				"rank":       i + 1,
				"ev_percent": e.EVPercent,
				"match":      e.Match,
				"book":       e.BookKey,
				"market":     e.MarketKey,
				"outcome":    outcomeLabel(e),
				"odds":       e.Odds,
				"fair_am":    e.FairAm,
			}).Info("Edge")
		}
		for _, a := range result.Arbs {
			entry.WithFields(logrus.Fields{
				"roi":   a.ROI,
				"match": a.Match,
				"legs":  legsLabel(a.Legs),
			}).Info("Arbitrage")
		}
		summary := logrus.Fields{
			"edges":      len(result.EV),
			"arbitrages": len(result.Arbs),
			"cached":     result.Cached,
		}
		if nextRun != nil {
			if next := nextRun(); !next.IsZero() {
				summary["next_run"] = next.Format(time.RFC3339)
			}
		}
		entry.WithFields(summary).Info("Watch pass completed")
	}
}
