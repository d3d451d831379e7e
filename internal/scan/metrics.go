package scan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work of a scan. Each Metrics owns its registry so
// concurrent scans and tests do not share counters.
type Metrics struct {
	registry *prometheus.Registry

	Archives prometheus.Counter
	Entries  prometheus.Counter
	// Facts counts facts per category before cross-entry de-duplication.
	Facts    *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Duration prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Archives: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "migration_analysis",
			Subsystem: "scan",
			Name:      "archives_total",
			Help:      "Archives scanned, nested archives included",
		}),
		Entries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "migration_analysis",
			Subsystem: "scan",
			Name:      "entries_total",
			Help:      "Archive entries analyzed",
		}),
		Facts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "migration_analysis",
			Subsystem: "scan",
			Name:      "facts_total",
			Help:      "Facts extracted by category",
		}, []string{"category"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "migration_analysis",
			Subsystem: "scan",
			Name:      "failures_total",
			Help:      "Entries that could not be analyzed, by analyzer",
		}, []string{"analyzer"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "migration_analysis",
			Subsystem: "scan",
			Name:      "entry_duration_seconds",
			Help:      "Time spent analyzing one entry with every analyzer",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
