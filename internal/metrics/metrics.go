package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Trade processing metrics
	TradesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_trades_processed_total",
			Help: "Total number of trades processed",
		},
		[]string{"status"}, // success, duplicate, filtered, error
	)

	AnalyzeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketsentry_analyze_duration_seconds",
			Help:    "Duration of per-trade intelligence analysis",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Detector metrics
	DetectorsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_detectors_triggered_total",
			Help: "Total number of detector triggers",
		},
		[]string{"detector"}, // fresh_wallet, structuring, unusual_sizing, proven_winner
	)

	DetectorsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_detectors_failed_total",
			Help: "Total number of detector lookup failures",
		},
		[]string{"detector"},
	)

	// Alert metrics
	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_alerts_emitted_total",
			Help: "Total number of alerts emitted",
		},
		[]string{"kind", "severity"},
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_alerts_sent_total",
			Help: "Total number of alerts sent",
		},
		[]string{"status", "type"}, // success/error, discord/smtp/log
	)

	AlertsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketsentry_alerts_suppressed_total",
			Help: "Total number of alerts suppressed due to cooldown",
		},
	)

	// Adjusted confidence of emitted alerts, to watch threshold calibration.
	AlertConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketsentry_alert_confidence",
			Help:    "Distribution of adjusted confidence on emitted alerts",
			Buckets: []float64{.5, .6, .7, .75, .8, .85, .9, .95, .97, .99},
		},
	)

	// API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"api", "endpoint", "status"}, // data/gamma, /trades, success/error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketsentry_api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"api", "endpoint"},
	)

	// Database metrics
	DatabaseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"}, // get/insert/update, success/error
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketsentry_database_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Cache metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_cache_requests_total",
			Help: "Total number of stats cache lookups",
		},
		[]string{"cache", "result"}, // wallet_stats/market_stats, hit/miss
	)

	// Resolution tracker metrics
	ResolutionRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketsentry_resolution_runs_total",
			Help: "Total number of resolution tracker runs",
		},
	)

	MarketsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketsentry_markets_resolved_total",
			Help: "Total number of markets resolved",
		},
	)

	ResolutionRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketsentry_resolution_run_duration_seconds",
			Help:    "Duration of resolution tracker runs",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// System health
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsentry_health_checks_total",
			Help: "Total number of health check requests",
		},
		[]string{"status"}, // healthy/unhealthy
	)
)

// RecordTradeProcessed records trade pipeline metrics
func RecordTradeProcessed(duration time.Duration, status string) {
	TradesProcessed.WithLabelValues(status).Inc()
	AnalyzeDuration.Observe(duration.Seconds())
}

// RecordDetector records a detector outcome
func RecordDetector(detector string, triggered bool, err error) {
	if err != nil {
		DetectorsFailed.WithLabelValues(detector).Inc()
		return
	}
	if triggered {
		DetectorsTriggered.WithLabelValues(detector).Inc()
	}
}

// RecordAlertEmitted records an emitted alert and its confidence
func RecordAlertEmitted(kind, severity string, confidence float64) {
	AlertsEmitted.WithLabelValues(kind, severity).Inc()
	AlertConfidence.Observe(confidence)
}

// RecordAlertSent records a delivery attempt
func RecordAlertSent(sendStatus, alertType string) {
	AlertsSent.WithLabelValues(sendStatus, alertType).Inc()
}

// RecordAPIRequest records API request metrics
func RecordAPIRequest(api, endpoint string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	APIRequests.WithLabelValues(api, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(api, endpoint).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueries.WithLabelValues(operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(cache, result).Inc()
}

// RecordResolutionRun records resolution tracker metrics
func RecordResolutionRun(duration time.Duration, marketsResolved int) {
	ResolutionRuns.Inc()
	MarketsResolved.Add(float64(marketsResolved))
	ResolutionRunDuration.Observe(duration.Seconds())
}

// RecordHealthCheck records health check status
func RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	HealthChecks.WithLabelValues(status).Inc()
}
