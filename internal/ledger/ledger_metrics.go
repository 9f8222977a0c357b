package ledger

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the credit ledger.
type Metrics struct {
	DebitsTotal  prometheus.Counter
	DebitsDenied prometheus.Counter
}

// NewMetrics registers and returns ledger metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DebitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vet_credit_debits_total",
			Help: "Total credit units debited.",
		}),
		DebitsDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vet_credit_debits_denied_total",
			Help: "Debit attempts denied for insufficient balance.",
		}),
	}
	reg.MustRegister(m.DebitsTotal, m.DebitsDenied)
	return m
}
