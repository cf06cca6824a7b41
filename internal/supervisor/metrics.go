package supervisor

import "github.com/prometheus/client_golang/prometheus"

// metricsRegistry holds the supervisor's own operational counters/gauges,
// exposed on the local /metrics operability endpoint. These are orthogonal
// to the control-plane wire format — nothing here is sent to the control
// plane.
type metricsRegistry struct {
	reconnects      prometheus.Counter
	ticksSent       prometheus.Counter
	droppedFrames   prometheus.Counter
	lastTickSeconds prometheus.Gauge
}

func newMetricsRegistry(reg prometheus.Registerer) metricsRegistry {
	m := metricsRegistry{
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "komari_agent_reconnects_total",
			Help: "Number of times the agent's outer loop has reconnected to the control plane.",
		}),
		ticksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "komari_agent_ticks_sent_total",
			Help: "Number of realtime info frames successfully sent.",
		}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "komari_agent_dropped_frames_total",
			Help: "Number of inbound frames dropped for failing to parse.",
		}),
		lastTickSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "komari_agent_last_tick_seconds",
			Help: "Duration of the most recently completed metrics sampling tick.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.reconnects, m.ticksSent, m.droppedFrames, m.lastTickSeconds)
	}
	return m
}
