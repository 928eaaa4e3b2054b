package watch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates tick observability across all engines of a watcher
// process. A nil *Metrics disables instrumentation.
type Metrics struct {
	ticksTotal    *prometheus.CounterVec
	tickErrors    *prometheus.CounterVec
	eventsEmitted *prometheus.CounterVec
	tickDuration  *prometheus.HistogramVec
}

// NewMetrics registers the watch metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flarewatch",
			Name:      "ticks_total",
			Help:      "Poll ticks executed, by event kind.",
		}, []string{"kind"}),
		tickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flarewatch",
			Name:      "tick_errors_total",
			Help:      "Poll ticks that failed, by event kind.",
		}, []string{"kind"}),
		eventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flarewatch",
			Name:      "events_emitted_total",
			Help:      "Events emitted, by event kind.",
		}, []string{"kind"}),
		tickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flarewatch",
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one poll tick, by event kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	reg.MustRegister(m.ticksTotal, m.tickErrors, m.eventsEmitted, m.tickDuration)
	return m
}

func (m *Metrics) observeTick(kind Kind, d time.Duration, emitted int, err error) {
	if m == nil {
		return
	}
	k := string(kind)
	m.ticksTotal.WithLabelValues(k).Inc()
	m.tickDuration.WithLabelValues(k).Observe(d.Seconds())
	if err != nil {
		m.tickErrors.WithLabelValues(k).Inc()
		return
	}
	if emitted > 0 {
		m.eventsEmitted.WithLabelValues(k).Add(float64(emitted))
	}
}
