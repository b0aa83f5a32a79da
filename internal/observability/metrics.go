// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Stream metrics
	ReconnectAttempts prometheus.Counter
	StreamState       *prometheus.GaugeVec
	MessagesReceived  prometheus.Counter
	ParseErrors       prometheus.Counter

	// Classification metrics
	EventsClassified *prometheus.CounterVec

	// Pipeline metrics
	CandidatesEmitted  *prometheus.CounterVec
	CandidatesDeduped  prometheus.Counter
	CandidatesFiltered prometheus.Counter
	DedupTrackedSize   prometheus.Gauge
	MonitoringHalted   prometheus.Gauge

	// Scanner metrics
	ScanRecordsDecoded prometheus.Counter
	ScanErrors         prometheus.Counter

	// Listing poll metrics
	ListingPolls      prometheus.Counter
	ListingPollErrors prometheus.Counter

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "launch_monitor"
	}

	return &Metrics{
		// Stream metrics
		ReconnectAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "reconnect_attempts_total",
			Help:      "Total number of websocket reconnect attempts",
		}),
		StreamState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "state",
			Help:      "Current stream session state (1 for the active state)",
		}, []string{"state"}),
		MessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "messages_received_total",
			Help:      "Total number of raw subscription messages received",
		}),
		ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "parse_errors_total",
			Help:      "Total number of malformed subscription messages dropped",
		}),

		// Classification metrics
		EventsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "events_total",
			Help:      "Total number of classified events by kind",
		}, []string{"kind"}),

		// Pipeline metrics
		CandidatesEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "candidates_emitted_total",
			Help:      "Total number of accepted candidate events by source",
		}, []string{"source"}),
		CandidatesDeduped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "candidates_deduped_total",
			Help:      "Total number of candidates dropped as already seen",
		}),
		CandidatesFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "candidates_filtered_total",
			Help:      "Total number of candidates rejected by the filter engine",
		}),
		DedupTrackedSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "dedup_tracked_size",
			Help:      "Current number of identifiers in the dedup tracker",
		}),
		MonitoringHalted: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "monitoring_halted",
			Help:      "1 when the stream manager has exhausted its reconnect budget",
		}),

		// Scanner metrics
		ScanRecordsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "records_decoded_total",
			Help:      "Total number of pool accounts decoded by the scanner",
		}),
		ScanErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "errors_total",
			Help:      "Total number of failed scan runs",
		}),

		// Listing poll metrics
		ListingPolls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "polls_total",
			Help:      "Total number of listing poll runs",
		}),
		ListingPollErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "poll_errors_total",
			Help:      "Total number of failed listing polls",
		}),

		// RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordReconnectAttempt increments the reconnect attempt counter.
func RecordReconnectAttempt() {
	DefaultMetrics.ReconnectAttempts.Inc()
}

// RecordStreamState marks the current session state.
func RecordStreamState(state string) {
	DefaultMetrics.StreamState.Reset()
	DefaultMetrics.StreamState.WithLabelValues(state).Set(1)
}

// RecordMessageReceived increments the raw message counter.
func RecordMessageReceived() {
	DefaultMetrics.MessagesReceived.Inc()
}

// RecordParseError increments the malformed message counter.
func RecordParseError() {
	DefaultMetrics.ParseErrors.Inc()
}

// RecordEventClassified increments the per-kind classification counter.
func RecordEventClassified(kind string) {
	DefaultMetrics.EventsClassified.WithLabelValues(kind).Inc()
}

// RecordCandidateEmitted increments the per-source emission counter.
func RecordCandidateEmitted(source string) {
	DefaultMetrics.CandidatesEmitted.WithLabelValues(source).Inc()
}

// RecordCandidateDeduped increments the dedup-drop counter.
func RecordCandidateDeduped() {
	DefaultMetrics.CandidatesDeduped.Inc()
}

// RecordCandidateFiltered increments the filter-drop counter.
func RecordCandidateFiltered() {
	DefaultMetrics.CandidatesFiltered.Inc()
}

// UpdateDedupSize updates the dedup tracker size gauge.
func UpdateDedupSize(n int) {
	DefaultMetrics.DedupTrackedSize.Set(float64(n))
}

// RecordMonitoringHalted marks monitoring as permanently stopped.
func RecordMonitoringHalted() {
	DefaultMetrics.MonitoringHalted.Set(1)
}

// RecordScanRun records one scan: records decoded and whether the run
// failed.
func RecordScanRun(records int, err error) {
	DefaultMetrics.ScanRecordsDecoded.Add(float64(records))
	if err != nil {
		DefaultMetrics.ScanErrors.Inc()
	}
}

// RecordListingPoll records one listing poll.
func RecordListingPoll(err error) {
	DefaultMetrics.ListingPolls.Inc()
	if err != nil {
		DefaultMetrics.ListingPollErrors.Inc()
	}
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
