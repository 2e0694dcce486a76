package inspect

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/librescoot/timedfsm"
)

const noState = "none"

// Metrics publishes machine activity to Prometheus
type Metrics struct {
	transitions     *prometheus.CounterVec
	pendingQueued   prometheus.Counter
	pendingReplaced prometheus.Counter
	remaining       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// It panics if registration fails, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timedfsm_transitions_total",
				Help: "Total number of state swaps",
			},
			[]string{"from", "to"},
		),
		pendingQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timedfsm_pending_queued_total",
			Help: "Total number of delayed state change requests stored as pending",
		}),
		pendingReplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timedfsm_pending_replaced_total",
			Help: "Total number of pending states overwritten before they were applied",
		}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timedfsm_dwell_remaining_seconds",
			Help: "Dwell time left in the current state at the last capture",
		}),
	}
	reg.MustRegister(m.transitions, m.pendingQueued, m.pendingReplaced, m.remaining)
	return m
}

// MachineOptions returns the machine callbacks feeding these metrics
func (m *Metrics) MachineOptions() []timedfsm.Option {
	return []timedfsm.Option{
		timedfsm.WithStateChangeCallback(m.ObserveTransition),
		timedfsm.WithPendingCallback(m.ObservePending),
	}
}

// ObserveTransition counts a state swap
func (m *Metrics) ObserveTransition(from, to timedfsm.State) {
	m.transitions.WithLabelValues(label(from), label(to)).Inc()
}

// ObservePending counts a pending request and any request it overwrote
func (m *Metrics) ObservePending(replaced, _ timedfsm.State) {
	m.pendingQueued.Inc()
	if replaced != nil {
		m.pendingReplaced.Inc()
	}
}

// ObserveSnapshot records the remaining dwell time
func (m *Metrics) ObserveSnapshot(s timedfsm.Snapshot) {
	if s.Remaining == timedfsm.Forever {
		return
	}
	m.remaining.Set(s.Remaining.Seconds())
}

func label(s timedfsm.State) string {
	if s == nil {
		return noState
	}
	return timedfsm.NameOf(s)
}
