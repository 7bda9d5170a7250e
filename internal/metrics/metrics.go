// Package metrics provides the centralized Prometheus metrics registry for the odds analyzer.
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

// Counter metrics
var (
	DaysProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_analyzer",
		Name:      "days_processed_total",
		Help:      "Total number of archive days fetched and merged",
	})
	MatchesInsertedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_analyzer",
		Name:      "matches_inserted_total",
		Help:      "Total number of new match records added to the archive",
	})
	MatchesUpdatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_analyzer",
		Name:      "matches_updated_total",
		Help:      "Total number of existing match records updated",
	})
	IngestErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_analyzer",
		Name:      "ingest_errors_total",
		Help:      "Total number of per-day ingestion failures",
	})
	AnaloguesFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_analyzer",
		Name:      "analogues_found_total",
		Help:      "Total number of historical analogues matched",
	})
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_analyzer",
		Name:      "feed_requests_total",
		Help:      "Total number of feed requests by outcome",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	ArchiveDays = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_analyzer",
		Name:      "archive_days",
		Help:      "Number of day buckets in the archive",
	})
	ArchiveMatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_analyzer",
		Name:      "archive_matches",
		Help:      "Number of match records in the archive",
	})
)

// Histogram metrics
var (
	IngestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "odds_analyzer",
		Name:      "ingest_duration_seconds",
		Help:      "Duration of full ingestion runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "odds_analyzer",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of similarity analysis runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(DaysProcessedTotal)
		registry.MustRegister(MatchesInsertedTotal)
		registry.MustRegister(MatchesUpdatedTotal)
		registry.MustRegister(IngestErrorsTotal)
		registry.MustRegister(AnaloguesFoundTotal)
		registry.MustRegister(FeedRequestsTotal)

		// Register gauge metrics
		registry.MustRegister(ArchiveDays)
		registry.MustRegister(ArchiveMatches)

		// Register histogram metrics
		registry.MustRegister(IngestDuration)
		registry.MustRegister(AnalysisDuration)
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

// RecordDayProcessed records one merged archive day.
func RecordDayProcessed(inserted, updated int) {
	DaysProcessedTotal.Inc()
	MatchesInsertedTotal.Add(float64(inserted))
	MatchesUpdatedTotal.Add(float64(updated))
}

// RecordIngestError records a per-day ingestion failure.
func RecordIngestError() {
	IngestErrorsTotal.Inc()
}

// RecordIngestDuration records the wall time of an ingestion run.
func RecordIngestDuration(durationSeconds float64) {
	IngestDuration.Observe(durationSeconds)
}

// RecordAnalysis records one similarity run and its matches.
func RecordAnalysis(analogues int, durationSeconds float64) {
	AnaloguesFoundTotal.Add(float64(analogues))
	AnalysisDuration.Observe(durationSeconds)
}

// RecordFeedRequest records a feed request by outcome label.
func RecordFeedRequest(outcome string) {
	FeedRequestsTotal.WithLabelValues(outcome).Inc()
}

// UpdateArchiveSize updates the archive size gauges.
func UpdateArchiveSize(days, matches int) {
	ArchiveDays.Set(float64(days))
	ArchiveMatches.Set(float64(matches))
}
