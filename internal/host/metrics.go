package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "neuromap"

type Metrics struct {
	SamplesAppended  prometheus.Counter
	SamplesRejected  prometheus.Counter
	SamplesThrottled prometheus.Counter
	Recomputes       prometheus.Counter
	DatasetSize      prometheus.Gauge
}

// NewMetrics creates the operator collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SamplesAppended: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "samples_appended_total",
			Help:      "Samples added to the dataset.",
		}),
		SamplesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "samples_rejected_total",
			Help:      "Add-sample requests rejected by validation.",
		}),
		SamplesThrottled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "samples_throttled_total",
			Help:      "Add-sample requests dropped by the sample rate limit.",
		}),
		Recomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "normalization_recomputes_total",
			Help:      "Normalization profile recomputations.",
		}),
		DatasetSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_samples",
			Help:      "Samples currently held.",
		}),
	}
}
