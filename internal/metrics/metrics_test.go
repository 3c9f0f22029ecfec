package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveOperation("register", "ok")
	m.ObserveOperation("register", "ok")
	m.ObserveOperation("login", "InvalidCredentials")
	m.ObserveOtpDispatch("sent")

	if got := testutil.ToFloat64(m.operations.WithLabelValues("register", "ok")); got != 2 {
		t.Fatalf("expected 2 register ok, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("login", "InvalidCredentials")); got != 1 {
		t.Fatalf("expected 1 login failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.otpDispatch.WithLabelValues("sent")); got != 1 {
		t.Fatalf("expected 1 sent otp, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveOtpDispatch("timeout")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `notes_auth_otp_dispatch_total{outcome="timeout"} 1`) {
		t.Fatalf("expected dispatch counter in exposition output")
	}
}
