package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	handler := Prometheus(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "boom") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/groups", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	ok := m.requestsTotal.WithLabelValues("/groups", "200")
	if got := testutil.ToFloat64(ok); got != 1 {
		t.Errorf("requests_total{/groups,200} = %v, want 1", got)
	}
	boom := m.requestsTotal.WithLabelValues("/boom", "500")
	if got := testutil.ToFloat64(boom); got != 1 {
		t.Errorf("requests_total{/boom,500} = %v, want 1", got)
	}

	if got := testutil.CollectAndCount(m.requestDuration); got == 0 {
		t.Error("duration histogram recorded nothing")
	}
}

func TestHistoryCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	m.RecordPush()
	m.RecordPush()
	m.RecordReplace()
	m.RecordNoop()
	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()
	m.RecordWSError("write")

	if got := testutil.ToFloat64(m.historyPushes); got != 2 {
		t.Errorf("history pushes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.historyReplaces); got != 1 {
		t.Errorf("history replaces = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rewriteNoops); got != 1 {
		t.Errorf("rewrite noops = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.wsErrors.WithLabelValues("write")); got != 1 {
		t.Errorf("ws errors{write} = %v, want 1", got)
	}
}

func TestSharedMetricsSingleton(t *testing.T) {
	if SharedMetrics() != SharedMetrics() {
		t.Error("SharedMetrics returned different instances")
	}
}
