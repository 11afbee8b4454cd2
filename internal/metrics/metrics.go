// Package metrics exposes Prometheus instrumentation for evaluations and the
// assistant gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the loan desk.
type Metrics struct {
	// Evaluation outcomes by verdict and purpose
	Evaluations *prometheus.CounterVec

	// Failure reasons by code
	FailureReasons *prometheus.CounterVec

	// Evaluations whose limit was lowered by a regulatory cap
	PolicyCapsApplied *prometheus.CounterVec

	// Assistant inquiries by outcome: "answered", "apology", "busy", "rejected"
	Inquiries *prometheus.CounterVec

	// Gateway round-trip latency
	GatewayLatency prometheus.Histogram
}

// New creates a Metrics instance registered on reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loandesk_evaluations_total",
			Help: "Total eligibility evaluations by verdict and purpose",
		}, []string{"verdict", "purpose"}),

		FailureReasons: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loandesk_failure_reasons_total",
			Help: "Total failure reasons reported by code",
		}, []string{"code"}),

		PolicyCapsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loandesk_policy_caps_applied_total",
			Help: "Total evaluations limited by a regulatory cap, by purpose",
		}, []string{"purpose"}),

		Inquiries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loandesk_assistant_inquiries_total",
			Help: "Total assistant inquiries by outcome",
		}, []string{"outcome"}),

		GatewayLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loandesk_assistant_gateway_duration_seconds",
			Help:    "Duration of assistant gateway calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveEvaluation records one evaluation outcome.
func (m *Metrics) ObserveEvaluation(verdict, purpose string, reasonCodes []string, capApplied bool) {
	if m == nil {
		return
	}
	if purpose == "" {
		purpose = "UNSET"
	}
	m.Evaluations.WithLabelValues(verdict, purpose).Inc()
	for _, code := range reasonCodes {
		m.FailureReasons.WithLabelValues(code).Inc()
	}
	if capApplied {
		m.PolicyCapsApplied.WithLabelValues(purpose).Inc()
	}
}

// IncrementInquiry records an assistant inquiry outcome.
func (m *Metrics) IncrementInquiry(outcome string) {
	if m != nil {
		m.Inquiries.WithLabelValues(outcome).Inc()
	}
}

// ObserveGatewayLatency records the duration of one gateway call.
func (m *Metrics) ObserveGatewayLatency(d time.Duration) {
	if m != nil {
		m.GatewayLatency.Observe(d.Seconds())
	}
}
