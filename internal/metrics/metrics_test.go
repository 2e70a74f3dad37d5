package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	var total float64
	found := false
	for _, mf := range metrics {
		if mf.GetName() == name {
			found = true
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	if !found {
		t.Fatalf("metric %s not found", name)
	}
	return total
}

func TestRecordGateDecision_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGateDecision("anonymous", false, "requires_login")
	c.RecordGateDecision("admin", true, "")

	if got := counterValue(t, reg, "coringas_gate_decisions_total"); got != 2 {
		t.Errorf("gate_decisions_total = %v, want 2", got)
	}
}

func TestRecordMemberCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMemberCreated()
	c.RecordMemberCreated()

	if got := counterValue(t, reg, "coringas_members_created_total"); got != 2 {
		t.Errorf("members_created_total = %v, want 2", got)
	}
}

func TestRecordSignIn_LabelsByNewUser(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignIn(true)
	c.RecordSignIn(false)
	c.RecordSignIn(false)

	if got := counterValue(t, reg, "coringas_sign_ins_total"); got != 3 {
		t.Errorf("sign_ins_total = %v, want 3", got)
	}
}

func TestRecordHTTPStatus_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(403)

	if got := counterValue(t, reg, "coringas_http_status_total"); got != 2 {
		t.Errorf("http_status_total = %v, want 2", got)
	}
}

func TestRecordSessionsPurged_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionsPurged(5)
	c.RecordSessionsPurged(3)

	if got := counterValue(t, reg, "coringas_sessions_purged_total"); got != 8 {
		t.Errorf("sessions_purged_total = %v, want 8", got)
	}
}

func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuthLookupLatency(25 * time.Millisecond)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "coringas_auth_lookup_latency_seconds") {
		t.Error("response should contain coringas_auth_lookup_latency_seconds metric")
	}
}
