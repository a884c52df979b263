package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bridge.
type Metrics struct {
	// Publish metrics
	Publishes     *prometheus.CounterVec
	PublishSteps  *prometheus.CounterVec
	Compensations *prometheus.CounterVec

	// Remote client metrics
	RemoteCalls       *prometheus.CounterVec
	RemoteCallLatency *prometheus.HistogramVec

	// Update metrics
	UpdateNodes *prometheus.CounterVec

	// Sync metrics
	SyncRuns       *prometheus.CounterVec
	SyncUpserts    *prometheus.CounterVec
	SyncTombstones *prometheus.CounterVec
	SyncOrphans    *prometheus.CounterVec

	// Batch metrics
	BatchTasks *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Publishes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publishes_total",
				Help:      "Publish attempts by final status",
			},
			[]string{"status"},
		),
		PublishSteps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_steps_total",
				Help:      "Individual remote creation steps by kind and status",
			},
			[]string{"kind", "status"},
		),
		Compensations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compensations_total",
				Help:      "Compensating deletes issued during saga unwind",
			},
			[]string{"kind", "status"},
		),
		RemoteCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Remote platform API calls by method and status",
			},
			[]string{"method", "status"},
		),
		RemoteCallLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Remote platform call latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method"},
		),
		UpdateNodes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "update_nodes_total",
				Help:      "Flexible-update node outcomes by kind",
			},
			[]string{"kind", "outcome"},
		),
		SyncRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Account pull-sync runs by status",
			},
			[]string{"status"},
		),
		SyncUpserts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_upserts_total",
				Help:      "Records upserted during pull sync",
			},
			[]string{"kind"},
		),
		SyncTombstones: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_tombstones_total",
				Help:      "Local records tombstoned during pull sync",
			},
			[]string{"kind"},
		),
		SyncOrphans: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_orphans_total",
				Help:      "Fetched records skipped for missing local parents",
			},
			[]string{"kind"},
		),
		BatchTasks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_tasks_total",
				Help:      "Batch runner task outcomes",
			},
			[]string{"status"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the management rate limiter",
			},
			[]string{"endpoint"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPublish increments the publish counter with its final status.
func (m *Metrics) RecordPublish(status string) {
	m.Publishes.WithLabelValues(status).Inc()
}

// RecordPublishStep records one remote creation step.
func (m *Metrics) RecordPublishStep(kind, status string) {
	m.PublishSteps.WithLabelValues(kind, status).Inc()
}

// RecordCompensation records one compensating delete.
func (m *Metrics) RecordCompensation(kind, status string) {
	m.Compensations.WithLabelValues(kind, status).Inc()
}

// RecordRemoteCall records a remote platform call with latency.
func (m *Metrics) RecordRemoteCall(method, status string, latency time.Duration) {
	m.RemoteCalls.WithLabelValues(method, status).Inc()
	m.RemoteCallLatency.WithLabelValues(method).Observe(latency.Seconds())
}

// RecordUpdateNode records one flexible-update node outcome.
func (m *Metrics) RecordUpdateNode(kind, outcome string) {
	m.UpdateNodes.WithLabelValues(kind, outcome).Inc()
}

// RecordSyncRun records an account sync run.
func (m *Metrics) RecordSyncRun(status string) {
	m.SyncRuns.WithLabelValues(status).Inc()
}

// RecordSyncUpsert records one upserted record during sync.
func (m *Metrics) RecordSyncUpsert(kind string) {
	m.SyncUpserts.WithLabelValues(kind).Inc()
}

// RecordSyncTombstone records one tombstoned record during sync.
func (m *Metrics) RecordSyncTombstone(kind string) {
	m.SyncTombstones.WithLabelValues(kind).Inc()
}

// RecordSyncOrphan records one orphan skip during sync.
func (m *Metrics) RecordSyncOrphan(kind string) {
	m.SyncOrphans.WithLabelValues(kind).Inc()
}

// RecordBatchTask records one batch task outcome.
func (m *Metrics) RecordBatchTask(status string) {
	m.BatchTasks.WithLabelValues(status).Inc()
}

// RecordRateLimitHit records a rejected management request.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}
