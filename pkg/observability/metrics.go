package observability

import (
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects tree and node statistics.
type Metrics struct {
	transitions  *prometheus.CounterVec
	steps        *prometheus.CounterVec
	stepDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil. Registering twice on the same registerer panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "node_transitions_total",
			Help:      "Node state transitions, by node type and new state.",
		}, []string{"type", "state"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "tree_steps_total",
			Help:      "Tree steps, by resulting tree state or error.",
		}, []string{"result"}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arbor",
			Name:      "tree_step_duration_seconds",
			Help:      "Time spent in a single tree step.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.transitions, m.steps, m.stepDuration)
	}
	return m
}

// ObserveTransition records a node state change. It has the shape of a
// domain.StateObserver.
func (m *Metrics) ObserveTransition(change domain.StateChange) {
	m.transitions.WithLabelValues(string(change.NodeType), strings.ToLower(change.State.String())).Inc()
}

// ObserveStep records one tree step. A non-nil err is counted as "error"
// regardless of state.
func (m *Metrics) ObserveStep(state domain.State, err error, elapsed time.Duration) {
	result := strings.ToLower(state.String())
	if err != nil {
		result = "error"
	}
	m.steps.WithLabelValues(result).Inc()
	m.stepDuration.Observe(elapsed.Seconds())
}
