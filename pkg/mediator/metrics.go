package mediator

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts mediated commands by channel, action and response code
type Metrics struct {
	commands *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics registers the mediator collectors on reg. A nil registerer
// keeps them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proxydesk",
			Subsystem: "mediator",
			Name:      "commands_total",
			Help:      "Backend commands by channel, action and response code.",
		}, []string{"channel", "action", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "proxydesk",
			Subsystem: "mediator",
			Name:      "command_duration_seconds",
			Help:      "Time from request to response per action.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"channel", "action"}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.latency)
	}
	return m
}

func (m *Metrics) observe(channel, action string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(channel, action, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(channel, action).Observe(elapsed.Seconds())
}
