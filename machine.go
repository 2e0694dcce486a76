package timedfsm

import (
	"log/slog"
	"time"
)

// Machine is a timed state machine holding a single current state
type Machine struct {
	clock    Clock
	current  State
	pending  State
	deadline time.Duration

	// gen is bumped on every swap of current, so an outer
	// ForceChangeState can tell that Enter replaced its state.
	gen uint64

	logger              *slog.Logger
	stateChangeCallback func(from, to State)
	pendingCallback     func(replaced, next State)
}

// Option is a functional option for configuring a Machine
type Option func(*Machine)

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithStateChangeCallback sets a callback invoked on every state swap.
// It runs after the current state has been replaced and before the new
// state's Enter, so nested changes requested from Enter are reported in
// order. to is nil when the machine is emptied.
func WithStateChangeCallback(fn func(from, to State)) Option {
	return func(m *Machine) {
		m.stateChangeCallback = fn
	}
}

// WithPendingCallback sets a callback invoked whenever ChangeStateDelayed
// stores a pending state. replaced is the pending state it overwrote, or nil.
func WithPendingCallback(fn func(replaced, next State)) Option {
	return func(m *Machine) {
		m.pendingCallback = fn
	}
}

// New creates a machine reading time from clock.
// A non-nil initial state is entered immediately; with a nil initial state
// the machine starts empty and allows a change right away.
func New(clock Clock, initial State, opts ...Option) *Machine {
	m := &Machine{
		clock:  clock,
		logger: Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if initial != nil {
		m.enter(nil, initial)
	}
	return m
}

// IsChangeAllowed reports whether the dwell time of the current state has elapsed
func (m *Machine) IsChangeAllowed() bool {
	return m.clock.Now() >= m.deadline
}

// ForceChangeState exits the current state and enters next, ignoring the
// dwell timer. Any pending state is discarded. A nil next leaves the
// machine empty with changes allowed.
func (m *Machine) ForceChangeState(next State) {
	from := m.current
	if from != nil {
		m.logger.Debug("exiting state", "state", NameOf(from))
		from.Exit()
	}
	if m.pending != nil {
		m.logger.Debug("pending state discarded", "pending", NameOf(m.pending))
		m.pending = nil
	}
	m.enter(from, next)
}

// ChangeState changes to next if the dwell time has elapsed.
// It returns false without side effects otherwise.
func (m *Machine) ChangeState(next State) bool {
	if !m.IsChangeAllowed() {
		m.logger.Debug("state change refused", "state", NameOf(m.current), "next", NameOf(next), "remaining", m.Delay())
		return false
	}
	m.ForceChangeState(next)
	return true
}

// ChangeStateDelayed changes to next now if allowed, or stores it as the
// pending state to be entered on the first tick after the dwell time.
//
// Only one state can be pending: a second call before the timer elapses
// silently replaces the first. Passing nil while the timer runs cancels
// the pending request.
func (m *Machine) ChangeStateDelayed(next State) {
	if m.IsChangeAllowed() {
		m.ForceChangeState(next)
		return
	}
	replaced := m.pending
	m.pending = next
	if replaced != nil {
		m.logger.Debug("pending state replaced", "replaced", NameOf(replaced), "pending", NameOf(next))
	} else {
		m.logger.Debug("state change delayed", "pending", NameOf(next), "remaining", m.Delay())
	}
	if m.pendingCallback != nil {
		m.pendingCallback(replaced, next)
	}
}

// Update must be called once per variable-rate frame
func (m *Machine) Update() {
	m.Tick(TickVariable)
}

// FixedUpdate must be called once per fixed-rate step
func (m *Machine) FixedUpdate() {
	m.Tick(TickFixed)
}

// Tick advances the machine by one tick of the given kind.
// A due pending state consumes the tick: it is entered, and the tick is
// not forwarded to it. Otherwise the tick goes to the current state, and a
// state it returns is entered at once.
func (m *Machine) Tick(kind TickKind) {
	if m.pending != nil && m.IsChangeAllowed() {
		next := m.pending
		m.pending = nil
		m.logger.Debug("applying pending state", "state", NameOf(next), "tick", kind)
		m.ForceChangeState(next)
		return
	}
	if m.current == nil {
		return
	}

	var next State
	switch kind {
	case TickFixed:
		next = m.current.FixedUpdate()
	default:
		next = m.current.Update()
	}
	if next != nil {
		m.logger.Debug("state requested transition", "state", NameOf(m.current), "next", NameOf(next), "tick", kind)
		m.ForceChangeState(next)
	}
}

// State returns the current state, or nil
func (m *Machine) State() State {
	return m.current
}

// Next returns the pending state, or nil
func (m *Machine) Next() State {
	return m.pending
}

// Delay returns the dwell time left before a change is allowed.
// It is negative once the deadline has passed, and Forever while a state
// is being entered.
func (m *Machine) Delay() time.Duration {
	if m.deadline == Forever {
		return Forever
	}
	return m.deadline - m.clock.Now()
}

// enter swaps current to next and arms the dwell timer from next.Enter.
func (m *Machine) enter(from, next State) {
	m.current = next
	m.gen++
	gen := m.gen

	if m.stateChangeCallback != nil {
		m.stateChangeCallback(from, next)
	}

	if next == nil {
		m.deadline = 0
		m.logger.Debug("machine emptied", "from", NameOf(from))
		return
	}

	// Enter may request a change itself; it must see a closed timer.
	m.deadline = Forever
	m.logger.Debug("entering state", "state", NameOf(next), "from", NameOf(from))
	dwell := next.Enter()
	if m.gen != gen {
		// Enter forced another state, which already armed the timer.
		return
	}
	m.deadline = addSat(m.clock.Now(), dwell)
	m.logger.Debug("state entered", "state", NameOf(next), "dwell", dwell)
}
