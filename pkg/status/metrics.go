package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared by every Reporter in a
// process, grounded on the teacher's pkg/snapshotter/metrics.go promauto
// idiom (one package-level registration per metric, *Vec variants labeled
// by the dimension callers vary on — here "phase" instead of "collector").
type Metrics struct {
	ItemsTotal     *prometheus.CounterVec
	ItemsDone      *prometheus.CounterVec
	PhaseDuration  *prometheus.HistogramVec
	LockContention *prometheus.CounterVec
}

// NewMetrics registers backurne's Prometheus collectors against the given
// registerer. Pass prometheus.DefaultRegisterer in production, or a fresh
// prometheus.NewRegistry() in tests to avoid cross-test collector reuse
// panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backurne_items_total",
				Help: "Total work items seen by a phase's status reporter.",
			},
			[]string{"phase"},
		),
		ItemsDone: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backurne_items_done_total",
				Help: "Total work items completed by a phase's status reporter.",
			},
			[]string{"phase"},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backurne_phase_duration_seconds",
				Help:    "Wall-clock time spent in a run phase.",
				Buckets: []float64{1, 5, 30, 60, 300, 900, 3600},
			},
			[]string{"phase"},
		),
		LockContention: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backurne_lock_contention_total",
				Help: "Number of times an image lock was found already held.",
			},
			[]string{"phase"},
		),
	}
}
