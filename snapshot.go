package timedfsm

import "time"

// Snapshot is a read-only view of a machine for debug overlays
type Snapshot struct {
	State         string
	Next          string
	Remaining     time.Duration // clamped at zero
	ChangeAllowed bool
}

// Label renders the snapshot as "Current -> Next", omitting an absent
// pending state
func (s Snapshot) Label() string {
	if s.Next == "" {
		return s.State
	}
	return s.State + " -> " + s.Next
}

// Snapshot captures the machine's current view.
// It has no effect on the machine, but reads the clock and resolves type
// names, so callers polling it every frame should gate it behind a debug flag.
func (m *Machine) Snapshot() Snapshot {
	remaining := m.Delay()
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		State:         NameOf(m.current),
		Next:          NameOf(m.pending),
		Remaining:     remaining,
		ChangeAllowed: m.IsChangeAllowed(),
	}
}
