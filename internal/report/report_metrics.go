package report

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for report rendering and export.
type Metrics struct {
	RenderDuration prometheus.Histogram
	StorageExports prometheus.Counter
	DriveExports   prometheus.Counter
}

// NewMetrics registers and returns report metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vet_report_render_duration_seconds",
			Help:    "Duration of report PDF rendering in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms .. ~5s
		}),
		StorageExports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vet_report_storage_exports_total",
			Help: "Total report exports to object storage.",
		}),
		DriveExports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vet_report_drive_exports_total",
			Help: "Total report exports to a connected drive.",
		}),
	}
	reg.MustRegister(m.RenderDuration, m.StorageExports, m.DriveExports)
	return m
}
