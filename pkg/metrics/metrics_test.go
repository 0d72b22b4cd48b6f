package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPricingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPricingMetrics(reg)
	m.IncQuote("ecommerce")
	m.IncQuote("ecommerce")
	m.IncQuote("")
	m.IncValidation(OutcomeSuccess)
	m.IncValidation("discount_not_found")
	m.IncApplication("discount_expired_or_exhausted")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	assertCounter(t, mfs, "quotes_calculated_total", "project_type", "ecommerce", 2)
	assertCounter(t, mfs, "quotes_calculated_total", "project_type", "unknown", 1)
	assertCounter(t, mfs, "discount_validations_total", "outcome", OutcomeSuccess, 1)
	assertCounter(t, mfs, "discount_validations_total", "outcome", "discount_not_found", 1)
	assertCounter(t, mfs, "discount_applications_total", "outcome", "discount_expired_or_exhausted", 1)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/discounts/validate", 200, 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	assertCounter(t, mfs, "http_requests_total", "route", "/api/discounts/validate", 1)

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "method", "POST"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestMaintenanceMetricsObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMaintenanceMetrics(reg)
	finished := time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)
	m.ObserveRun("contact_retention", 2*time.Second, finished, nil)
	m.ObserveRun("contact_retention", time.Second, finished, errors.New("db down"))
	m.IncSkipped()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	assertCounter(t, mfs, "maintenance_job_runs_total", "outcome", OutcomeSuccess, 1)
	assertCounter(t, mfs, "maintenance_job_runs_total", "outcome", OutcomeError, 1)

	gauge := findMetricFamily(mfs, "maintenance_job_last_success_timestamp_seconds")
	if gauge == nil || len(gauge.GetMetric()) != 1 {
		t.Fatalf("expected a single last-success series")
	}
	if got := gauge.GetMetric()[0].GetGauge().GetValue(); got != float64(finished.Unix()) {
		t.Fatalf("expected last success %d, got %v", finished.Unix(), got)
	}
	if got, err := fetchHistogramSum(mfs, "maintenance_job_duration_seconds", "job", "contact_retention"); err != nil || got != 3 {
		t.Fatalf("expected 3s of observed duration, got %v (%v)", got, err)
	}
	skipped := findMetricFamily(mfs, "maintenance_cycles_skipped_total")
	if skipped == nil || skipped.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one skipped cycle")
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var p *PricingMetrics
	p.IncQuote("vitrine")
	p.IncValidation(OutcomeError)
	p.IncApplication(OutcomeSuccess)

	NewPricingMetrics(nil).IncQuote("landing")

	var h *HTTPMetrics
	h.Observe("GET", "/health/live", 200, time.Millisecond)

	m := NewMaintenanceMetrics(nil)
	m.ObserveRun("discount-window", time.Millisecond, time.Now(), nil)
	m.IncSkipped()
}

func assertCounter(t *testing.T, mfs []*dto.MetricFamily, name, label, value string, want float64) {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, label, value)
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	if got != want {
		t.Fatalf("expected %s{%s=%q}=%v, got %v", name, label, value, want, got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
