package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkin exposes Prometheus collectors for the check-in pipeline.
type Checkin struct {
	outcomes *prometheus.CounterVec
	dropped  prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewCheckin creates the collectors and registers them with reg.
func NewCheckin(reg prometheus.Registerer) *Checkin {
	m := &Checkin{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_outcomes_total",
			Help: "Processed check-in events by outcome.",
		}, []string{"outcome"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkin_dropped_total",
			Help: "Decode events dropped by the debounce guard.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkin_duration_seconds",
			Help:    "Time spent processing one check-in event.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes, m.dropped, m.duration)
	}
	return m
}

// ObserveOutcome records one processed event.
func (m *Checkin) ObserveOutcome(outcome string, d time.Duration) {
	m.outcomes.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveDropped records one debounced event.
func (m *Checkin) ObserveDropped() {
	m.dropped.Inc()
}
