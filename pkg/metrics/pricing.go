package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Discount outcome label values. Rejections use the lowercased error code.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// PricingMetrics counts quote estimates and discount evaluations.
type PricingMetrics struct {
	quotes       *prometheus.CounterVec
	validations  *prometheus.CounterVec
	applications *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing counters on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_calculated_total",
		Help: "Quote estimates computed, by project type.",
	}, []string{"project_type"})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_validations_total",
		Help: "Discount code validations, by outcome.",
	}, []string{"outcome"})
	applications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_applications_total",
		Help: "Discount code applications, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(quotes, validations, applications)
	return &PricingMetrics{
		quotes:       quotes,
		validations:  validations,
		applications: applications,
	}
}

// IncQuote counts one estimate for the project type.
func (p *PricingMetrics) IncQuote(projectType string) {
	if p == nil || p.quotes == nil {
		return
	}
	p.quotes.WithLabelValues(normalizeLabel(projectType)).Inc()
}

// IncValidation counts one validate call with its outcome.
func (p *PricingMetrics) IncValidation(outcome string) {
	if p == nil || p.validations == nil {
		return
	}
	p.validations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncApplication counts one apply call with its outcome.
func (p *PricingMetrics) IncApplication(outcome string) {
	if p == nil || p.applications == nil {
		return
	}
	p.applications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
