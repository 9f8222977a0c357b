package verify

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the verification pipeline.
type Metrics struct {
	VerificationsTotal  *prometheus.CounterVec
	PipelineDuration    prometheus.Histogram
	SummarizerFallbacks prometheus.Counter
}

// NewMetrics registers and returns verification metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VerificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vet_verifications_total",
			Help: "Total verification attempts by check type and outcome.",
		}, []string{"type", "outcome"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vet_verification_duration_seconds",
			Help:    "End-to-end duration of completed verifications in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s .. ~128s
		}),
		SummarizerFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vet_summarizer_fallbacks_total",
			Help: "Verifications that fell back to the manual-review summary.",
		}),
	}
	reg.MustRegister(m.VerificationsTotal, m.PipelineDuration, m.SummarizerFallbacks)
	return m
}
