package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestLeadMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	m.ObserveSubmission("heroForm", "success")
	m.ObserveSubmission("heroForm", "success")
	m.ObserveSubmission("finalForm", "failure")
	m.ObserveValidationErrors("heroForm", 3)
	m.ObserveValidationErrors("heroForm", 0)
	m.ObserveRelay("ok", 0.25)
	m.ObserveSideEffectFailure("archive")

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("heroForm", "success")); got != 2 {
		t.Fatalf("expected 2 hero successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.validationErrors.WithLabelValues("heroForm")); got != 3 {
		t.Fatalf("expected 3 validation errors, got %v", got)
	}
	if got := testutil.ToFloat64(m.sideEffectFailure.WithLabelValues("archive")); got != 1 {
		t.Fatalf("expected 1 archive failure, got %v", got)
	}
}

func TestLeadMetricsRelayHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	m.ObserveRelay("error", 1.5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var hist *dto.Histogram
	for _, fam := range families {
		if fam.GetName() == "katalux_leads_relay_latency_seconds" {
			hist = fam.GetMetric()[0].GetHistogram()
		}
	}
	if hist == nil {
		t.Fatal("relay histogram not registered")
	}
	if hist.GetSampleCount() != 1 || hist.GetSampleSum() != 1.5 {
		t.Fatalf("unexpected histogram %v", hist)
	}
}

func TestLeadMetricsNilSafe(t *testing.T) {
	var m *LeadMetrics
	m.ObserveSubmission("heroForm", "success")
	m.ObserveValidationErrors("heroForm", 2)
	m.ObserveRelay("ok", 0.1)
	m.ObserveSideEffectFailure("notify")
}
