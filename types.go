// Package timedfsm is a timed finite state machine driven by host ticks.
//
// A Machine holds exactly one current State and advances it on two ticks:
// a variable-rate Update and a fixed-rate FixedUpdate. When a state is
// entered it reports a minimum dwell time; non-forced transitions are
// refused (ChangeState) or queued (ChangeStateDelayed) until that time has
// elapsed on the machine's logical Clock. Transitions returned from a
// state's Update or FixedUpdate, and ForceChangeState, bypass the timer.
//
// A Machine is not safe for concurrent use. The host must serialize every
// call into a given machine, typically by ticking it from a single loop.
package timedfsm

import (
	"log/slog"
	"math"
	"time"
)

// TickKind selects which state method a tick is forwarded to
type TickKind int

const (
	// TickVariable is the per-frame tick, forwarded to State.Update
	TickVariable TickKind = iota
	// TickFixed is the fixed-rate tick, forwarded to State.FixedUpdate
	TickFixed
)

func (k TickKind) String() string {
	switch k {
	case TickVariable:
		return "variable"
	case TickFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Forever is the deadline used while a state is being entered
const Forever time.Duration = math.MaxInt64

// Logger is the default logger used when none is provided
var Logger = slog.Default()

// addSat adds a dwell to a clock reading, saturating at Forever.
func addSat(now, d time.Duration) time.Duration {
	if d > 0 && now > Forever-d {
		return Forever
	}
	if d < 0 && now < math.MinInt64-d {
		return math.MinInt64
	}
	return now + d
}
