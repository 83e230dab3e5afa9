package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts application attempts.
type Metrics struct {
	Applications *prometheus.CounterVec
	Skipped      prometheus.Counter
	Duration     *prometheus.HistogramVec
}

// NewMetrics registers the applier metrics with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Applications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_applier_applications_total",
				Help: "Total number of attempted applications by platform and final status",
			},
			[]string{"platform", "status"},
		),
		Skipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "job_applier_applications_skipped_total",
				Help: "Total number of batch entries skipped for lack of an application URL",
			},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_applier_application_duration_seconds",
				Help:    "Duration of one application attempt in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"platform"},
		),
	}
}
