// Package metrics provides centralized Prometheus metrics registry for the scanner service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Filter reasons reported on OutcomesFilteredTotal
const (
	ReasonClampedProbability = "clamped_probability"
	ReasonBelowMinEdge       = "below_min_edge"
	ReasonAnomalousEdge      = "anomalous_edge"
)

// Scanner labels reported on ScansTotal and ScanDuration
const (
	ScannerEdge      = "edge"
	ScannerArbitrage = "arbitrage"
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "better_bets",
		Name:      "scans_total",
		Help:      "Total number of scans run, by scanner",
	}, []string{"scanner"})
	OutcomesFilteredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "better_bets",
		Name:      "outcomes_filtered_total",
		Help:      "Outcomes excluded from edge results, by reason",
	}, []string{"reason"})
	EdgesFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "better_bets",
		Name:      "edges_found_total",
		Help:      "Total number of edge records emitted",
	})
	ArbitragesFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "better_bets",
		Name:      "arbitrages_found_total",
		Help:      "Total number of arbitrage records emitted",
	})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "better_bets",
		Name:      "provider_requests_total",
		Help:      "Upstream odds provider requests, by outcome",
	}, []string{"outcome"})
	ProviderCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "better_bets",
		Name:      "provider_cache_total",
		Help:      "Provider cache lookups, by result",
	}, []string{"result"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "better_bets",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code",
	}, []string{"route", "code"})
)

// Gauge metrics
var (
	ProviderRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "better_bets",
		Name:      "provider_requests_remaining",
		Help:      "Remaining upstream request quota reported by the provider",
	})
	ProviderCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "better_bets",
		Name:      "provider_cache_hit_ratio",
		Help:      "Hit ratio of the provider response cache",
	})
	ProviderCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "better_bets",
		Name:      "provider_cache_entries",
		Help:      "Number of responses held in the provider cache",
	})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "better_bets",
		Name:      "scan_duration_seconds",
		Help:      "Duration of a scanner pass over one event batch",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}, []string{"scanner"})
	ProviderLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "better_bets",
		Name:      "provider_latency_seconds",
		Help:      "Latency of upstream odds provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(ScansTotal)
		registry.MustRegister(OutcomesFilteredTotal)
		registry.MustRegister(EdgesFoundTotal)
		registry.MustRegister(ArbitragesFoundTotal)
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(ProviderCacheTotal)
		registry.MustRegister(HTTPRequestsTotal)

		// Register gauge metrics
		registry.MustRegister(ProviderRequestsRemaining)
		registry.MustRegister(ProviderCacheHitRatio)
		registry.MustRegister(ProviderCacheEntries)

		// Register histogram metrics
		registry.MustRegister(ScanDuration)
		registry.MustRegister(ProviderLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScan records one scanner pass.
func RecordScan(scanner string, durationSeconds float64) {
	ScansTotal.WithLabelValues(scanner).Inc()
	ScanDuration.WithLabelValues(scanner).Observe(durationSeconds)
}

// RecordFilteredOutcome records an outcome excluded from edge output.
func RecordFilteredOutcome(reason string) {
	OutcomesFilteredTotal.WithLabelValues(reason).Inc()
}

// RecordEdgesFound records emitted edge records.
func RecordEdgesFound(count int) {
	EdgesFoundTotal.Add(float64(count))
}

// RecordArbitragesFound records emitted arbitrage records.
func RecordArbitragesFound(count int) {
	ArbitragesFoundTotal.Add(float64(count))
}

// RecordProviderRequest records an upstream request and its latency.
func RecordProviderRequest(outcome string, durationSeconds float64) {
	ProviderRequestsTotal.WithLabelValues(outcome).Inc()
	ProviderLatency.Observe(durationSeconds)
}

// RecordCacheLookup records a provider cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ProviderCacheTotal.WithLabelValues(result).Inc()
}

// UpdateCacheHitRatio updates the cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	ProviderCacheHitRatio.Set(ratio)
}

// UpdateCacheEntries updates the cache size gauge.
func UpdateCacheEntries(count int) {
	ProviderCacheEntries.Set(float64(count))
}

// UpdateRequestsRemaining updates the upstream quota gauge.
func UpdateRequestsRemaining(remaining int) {
	ProviderRequestsRemaining.Set(float64(remaining))
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(route, code string) {
	HTTPRequestsTotal.WithLabelValues(route, code).Inc()
}
