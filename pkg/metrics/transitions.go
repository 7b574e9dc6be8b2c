package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransitionMetrics records request lifecycle transition outcomes.
type TransitionMetrics struct {
	duration  *prometheus.HistogramVec
	accepted  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	conflicts *prometheus.CounterVec
}

// NewTransitionMetrics registers the transition metrics on the provided registerer.
func NewTransitionMetrics(reg prometheus.Registerer) *TransitionMetrics {
	if reg == nil {
		return &TransitionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "request_transition_duration_seconds",
		Help:    "Duration of access request transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "request_transition_accepted",
		Help: "Accepted access request transitions.",
	}, []string{"action"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "request_transition_rejected",
		Help: "Rejected access request transitions.",
	}, []string{"action", "reason"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "request_transition_conflicts",
		Help: "Transitions lost to a concurrent writer.",
	}, []string{"action"})
	reg.MustRegister(duration, accepted, rejected, conflicts)
	return &TransitionMetrics{
		duration:  duration,
		accepted:  accepted,
		rejected:  rejected,
		conflicts: conflicts,
	}
}

// ObserveDuration records how long the named transition took.
func (m *TransitionMetrics) ObserveDuration(action string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(action)).Observe(duration.Seconds())
}

// IncAccepted increments the accepted counter for the named action.
func (m *TransitionMetrics) IncAccepted(action string) {
	if m == nil || m.accepted == nil {
		return
	}
	m.accepted.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncRejected increments the rejected counter for the named action and reason.
func (m *TransitionMetrics) IncRejected(action, reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(action), normalizeLabel(reason)).Inc()
}

// IncConflict increments the lost-race counter for the named action.
func (m *TransitionMetrics) IncConflict(action string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
