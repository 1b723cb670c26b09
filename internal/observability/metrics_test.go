package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsWith_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg, "test")

	m.EstimatesTotal.WithLabelValues("web", "success").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_estimate_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("test_estimate_requests_total not registered")
	}
}

func TestRecordEstimate(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.EstimatesTotal.WithLabelValues("cli", "error"))

	RecordEstimate("cli", 0.01, 0, 0, errors.New("boom"))

	after := testutil.ToFloat64(DefaultMetrics.EstimatesTotal.WithLabelValues("cli", "error"))
	if after != before+1 {
		t.Errorf("error counter = %v, want %v", after, before+1)
	}
}

func TestRecordEstimate_SetsLastPrice(t *testing.T) {
	RecordEstimate("cli", 0.01, 123456, 1700000000, nil)

	if got := testutil.ToFloat64(DefaultMetrics.LastPrice); got != 123456 {
		t.Errorf("last price = %v, want 123456", got)
	}
	if got := testutil.ToFloat64(DefaultMetrics.LastSuccessfulEstimate); got != 1700000000 {
		t.Errorf("last success = %v, want 1700000000", got)
	}
}

func TestWebSocketGauge(t *testing.T) {
	base := testutil.ToFloat64(DefaultMetrics.WebSocketConnections)
	WebSocketOpened()
	WebSocketOpened()
	WebSocketClosed()
	if got := testutil.ToFloat64(DefaultMetrics.WebSocketConnections); got != base+1 {
		t.Errorf("gauge = %v, want %v", got, base+1)
	}
}
