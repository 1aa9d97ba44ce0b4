package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead intake.
type LeadMetrics struct {
	submissionsTotal  *prometheus.CounterVec
	validationErrors  *prometheus.CounterVec
	relayLatency      *prometheus.HistogramVec
	sideEffectFailure *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katalux",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead form submissions by terminal state",
		}, []string{"form_id", "outcome"}),
		validationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katalux",
			Subsystem: "leads",
			Name:      "validation_errors_total",
			Help:      "Field violations reported to visitors",
		}, []string{"form_id"}),
		relayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "katalux",
			Subsystem: "leads",
			Name:      "relay_latency_seconds",
			Help:      "Latency of form-relay submissions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		sideEffectFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katalux",
			Subsystem: "leads",
			Name:      "side_effect_failures_total",
			Help:      "Post-relay steps (record, archive, notify) that failed",
		}, []string{"step"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.validationErrors, m.relayLatency, m.sideEffectFailure)
	return m
}

func (m *LeadMetrics) ObserveSubmission(formID, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(formID, outcome).Inc()
}

func (m *LeadMetrics) ObserveValidationErrors(formID string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.validationErrors.WithLabelValues(formID).Add(float64(count))
}

func (m *LeadMetrics) ObserveRelay(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.relayLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *LeadMetrics) ObserveSideEffectFailure(step string) {
	if m == nil {
		return
	}
	m.sideEffectFailure.WithLabelValues(step).Inc()
}
