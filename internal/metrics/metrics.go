// Package metrics exposes Prometheus metrics for the notification pipeline.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ebaynotify"

// Metrics is safe to use through a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	NotificationsTotal     *prometheus.CounterVec   // outcomes by http status
	NotificationDuration   prometheus.Histogram     // end to end processing latency
	DispatchTotal          *prometheus.CounterVec   // handler invocations by topic and result
	KeyCacheLookupsTotal   *prometheus.CounterVec   // public key lookups by result (hit, miss)
	KeyFetchDuration       *prometheus.HistogramVec // upstream key fetch latency by environment
	UpstreamErrorsTotal    *prometheus.CounterVec   // upstream failures by operation (token, public_key)
	ChallengeRequestsTotal *prometheus.CounterVec   // endpoint challenges by result
}

func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register notification metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Inbound notifications by resulting HTTP status",
		},
		[]string{"status"},
	)

	m.NotificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_duration_seconds",
			Help:      "Time taken to validate and dispatch a notification",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
	)

	m.DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Topic handler invocations by topic and result",
		},
		[]string{"topic", "result"}, // result: success, error, unregistered
	)

	m.KeyCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_cache_lookups_total",
			Help:      "Public key cache lookups by result",
		},
		[]string{"result"},
	)

	m.KeyFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "key_fetch_duration_seconds",
			Help:      "Time taken to fetch a public key from eBay",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"environment"},
	)

	m.UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed calls to eBay by operation",
		},
		[]string{"operation"},
	)

	m.ChallengeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenge_requests_total",
			Help:      "Endpoint validation challenges by result",
		},
		[]string{"result"},
	)
}

const (
	ResultSuccess      = "success"
	ResultError        = "error"
	ResultUnregistered = "unregistered"
	ResultHit          = "hit"
	ResultMiss         = "miss"

	OperationToken     = "token"
	OperationPublicKey = "public_key"
)

func (m *Metrics) RecordNotification(status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	m.NotificationDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordDispatch(topic string, result string) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(topic, result).Inc()
}

func (m *Metrics) RecordKeyCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.KeyCacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordKeyFetch(environment string, duration time.Duration) {
	if m == nil {
		return
	}
	m.KeyFetchDuration.WithLabelValues(environment).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpstreamError(operation string) {
	if m == nil {
		return
	}
	m.UpstreamErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordChallenge(result string) {
	if m == nil {
		return
	}
	m.ChallengeRequestsTotal.WithLabelValues(result).Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.NotificationsTotal.Collect(ch)
	m.NotificationDuration.Collect(ch)
	m.DispatchTotal.Collect(ch)
	m.KeyCacheLookupsTotal.Collect(ch)
	m.KeyFetchDuration.Collect(ch)
	m.UpstreamErrorsTotal.Collect(ch)
	m.ChallengeRequestsTotal.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.NotificationsTotal.Describe(ch)
	m.NotificationDuration.Describe(ch)
	m.DispatchTotal.Describe(ch)
	m.KeyCacheLookupsTotal.Describe(ch)
	m.KeyFetchDuration.Describe(ch)
	m.UpstreamErrorsTotal.Describe(ch)
	m.ChallengeRequestsTotal.Describe(ch)
}
