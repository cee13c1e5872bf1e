package workflow

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for the classification outcome counter.
const (
	OutcomeSuccess      = "success"
	OutcomeNoDetection  = "no_detection"
	OutcomeMalformed    = "malformed"
	OutcomeTransport    = "transport_error"
	OutcomeUnavailable  = "unavailable"
	OutcomeInvalidImage = "invalid_image"
	OutcomeCancelled    = "cancelled"
)

// Metrics counts classification outcomes and validator warnings. A nil
// *Metrics records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
	warnings prometheus.Counter
	attempts prometheus.Histogram
}

// NewMetrics creates the workflow collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sapulidi_classification_outcomes_total",
				Help: "Classification attempts by terminal outcome.",
			},
			[]string{"outcome"},
		),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sapulidi_classification_warnings_total",
			Help: "Validator warnings on accepted classification results.",
		}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sapulidi_classification_attempts",
			Help:    "Model calls needed per classification.",
			Buckets: []float64{1, 2, 3},
		}),
	}
	reg.MustRegister(m.outcomes, m.warnings, m.attempts)
	return m
}

// Outcomes exposes the outcome counter.
func (m *Metrics) Outcomes() *prometheus.CounterVec {
	return m.outcomes
}

func (m *Metrics) outcome(label string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(label).Inc()
}

func (m *Metrics) warned(n int) {
	if m == nil || n == 0 {
		return
	}
	m.warnings.Add(float64(n))
}

func (m *Metrics) observeAttempts(n int) {
	if m == nil {
		return
	}
	m.attempts.Observe(float64(n))
}
