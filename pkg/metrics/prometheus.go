// Package metrics provides Prometheus metrics for the hubboard collectors.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Request and item outcomes used as label values.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Manager owns every metric a collection run reports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Remote API traffic
	hubRequests        *prometheus.CounterVec
	hubRequestDuration *prometheus.HistogramVec

	// Scan progress
	itemsScanned  *prometheus.CounterVec
	pointsAwarded *prometheus.CounterVec

	// Run results
	evaluationRecords prometheus.Gauge
	participants      *prometheus.GaugeVec
	publishes         *prometheus.CounterVec
	runDuration       *prometheus.GaugeVec
	lastSuccessUnix   *prometheus.GaugeVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hubboard",
		subsystem:        "collector",
		histogramBuckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.hubRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "hub_requests_total",
			Help:      "Remote API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	m.hubRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "hub_request_duration_milliseconds",
			Help:      "Remote API request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint"},
	)

	m.itemsScanned = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "items_scanned_total",
			Help:      "Repositories and discussions inspected, by pipeline and outcome",
		},
		[]string{"pipeline", "outcome"},
	)

	m.pointsAwarded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "points_awarded_total",
			Help:      "Engagement points awarded by counter",
		},
		[]string{"counter"},
	)

	m.evaluationRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_records",
		Help:      "Evaluation records produced by the last evals run",
	})

	m.participants = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "participants",
			Help:      "Engagement participants by membership",
		},
		[]string{"membership"},
	)

	m.publishes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "publish_total",
			Help:      "Dataset artifact uploads by artifact and outcome",
		},
		[]string{"artifact", "outcome"},
	)

	m.runDuration = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run by pipeline",
		},
		[]string{"pipeline"},
	)

	m.lastSuccessUnix = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "last_success_unix",
			Help:      "Unix time of the last completed run by pipeline",
		},
		[]string{"pipeline"},
	)
}

// RecordHubRequest records one remote API call.
func RecordHubRequest(endpoint, outcome string, latencyMs float64) {
	globalManager.hubRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.hubRequestDuration.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordItemScanned records one inspected repository or discussion.
func RecordItemScanned(pipeline, outcome string) {
	globalManager.itemsScanned.WithLabelValues(pipeline, outcome).Inc()
}

// RecordPointAwarded increments the awarded-points counter.
func RecordPointAwarded(counter string) {
	globalManager.pointsAwarded.WithLabelValues(counter).Inc()
}

// UpdateEvaluationRecords sets the evaluation record count.
func UpdateEvaluationRecords(count int) {
	globalManager.evaluationRecords.Set(float64(count))
}

// UpdateParticipants sets participant counts split by membership.
func UpdateParticipants(members, external int) {
	globalManager.participants.WithLabelValues("org").Set(float64(members))
	globalManager.participants.WithLabelValues("external").Set(float64(external))
}

// RecordPublish records one artifact upload attempt.
func RecordPublish(artifact, outcome string) {
	globalManager.publishes.WithLabelValues(artifact, outcome).Inc()
}

// RecordRunCompleted stores the run duration and completion time.
func RecordRunCompleted(pipeline string, d time.Duration) {
	globalManager.runDuration.WithLabelValues(pipeline).Set(d.Seconds())
	globalManager.lastSuccessUnix.WithLabelValues(pipeline).Set(float64(time.Now().Unix()))
}

// Push sends the registry to a Prometheus Pushgateway under job.
func Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(GetRegistry()).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	return nil
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
