package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	t.Parallel()

	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.RecordNotification(http.StatusNoContent, 10*time.Millisecond)
	m.RecordNotification(http.StatusNoContent, 20*time.Millisecond)
	m.RecordNotification(http.StatusPreconditionFailed, time.Millisecond)
	m.RecordDispatch("MARKETPLACE_ACCOUNT_DELETION", ResultSuccess)
	m.RecordKeyCacheLookup(true)
	m.RecordKeyCacheLookup(false)
	m.RecordKeyCacheLookup(false)
	m.RecordUpstreamError(OperationToken)

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{name: "204 outcomes", collector: m.NotificationsTotal.WithLabelValues("204"), want: 2},
		{name: "412 outcomes", collector: m.NotificationsTotal.WithLabelValues("412"), want: 1},
		{name: "dispatch", collector: m.DispatchTotal.WithLabelValues("MARKETPLACE_ACCOUNT_DELETION", ResultSuccess), want: 1},
		{name: "cache hits", collector: m.KeyCacheLookupsTotal.WithLabelValues(ResultHit), want: 1},
		{name: "cache misses", collector: m.KeyCacheLookupsTotal.WithLabelValues(ResultMiss), want: 2},
		{name: "token errors", collector: m.UpstreamErrorsTotal.WithLabelValues(OperationToken), want: 1},
	}

	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.collector); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	if _, err := New(registry); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := New(registry); err == nil {
		t.Error("second New() on the same registry expected error")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordNotification(http.StatusInternalServerError, time.Second)
	m.RecordDispatch("topic", ResultError)
	m.RecordKeyCacheLookup(true)
	m.RecordKeyFetch("PRODUCTION", time.Second)
	m.RecordUpstreamError(OperationPublicKey)
	m.RecordChallenge(ResultSuccess)
}
