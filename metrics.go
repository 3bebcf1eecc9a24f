package clusterview

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the viewer's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Frames        prometheus.Counter
	Picks         *prometheus.CounterVec // by result
	Highlights    *prometheus.CounterVec // by kind
	Transitions   *prometheus.CounterVec // by profile
	TargetUpdates *prometheus.CounterVec // by target and outcome
	Machines      prometheus.Gauge
	Workloads     prometheus.Gauge
}

// NewMetrics registers a fresh set of collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clusterview",
			Name:      "frames_total",
			Help:      "Frames stepped by the render loop.",
		}),
		Picks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clusterview",
			Name:      "picks_total",
			Help:      "Pointer clicks by what they hit.",
		}, []string{"result"}),
		Highlights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clusterview",
			Name:      "highlight_activations_total",
			Help:      "Highlight activations by entity kind.",
		}, []string{"kind"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clusterview",
			Name:      "camera_transitions_total",
			Help:      "Camera transitions started by profile.",
		}, []string{"profile"}),
		TargetUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clusterview",
			Name:      "target_updates_total",
			Help:      "View state pushes to targets by outcome.",
		}, []string{"target", "outcome"}),
		Machines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clusterview",
			Name:      "machines",
			Help:      "Machines in the mounted snapshot.",
		}),
		Workloads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clusterview",
			Name:      "workloads",
			Help:      "Workloads in the mounted snapshot.",
		}),
	}
	m.registry.MustRegister(
		m.Frames, m.Picks, m.Highlights, m.Transitions, m.TargetUpdates, m.Machines, m.Workloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
