package host

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/librescoot/timedfsm"
)

// countingTicker records the order of ticks
type countingTicker struct {
	calls []string
}

func (c *countingTicker) Update()      { c.calls = append(c.calls, "u") }
func (c *countingTicker) FixedUpdate() { c.calls = append(c.calls, "f") }

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestFrameRunsOwedFixedSteps(t *testing.T) {
	clock := timedfsm.NewManualClock(0)
	ticker := &countingTicker{}
	l := New(ticker, clock, Config{FixedStep: 10 * time.Millisecond, MaxFixedSteps: 10}, WithLogger(quietLogger))

	l.Frame() // first frame only sets the origin
	clock.Advance(25 * time.Millisecond)
	l.Frame()
	clock.Advance(5 * time.Millisecond)
	l.Frame() // carried 5ms + 5ms completes a step

	if got := strings.Join(ticker.calls, ""); got != "uffufu" {
		t.Errorf("expected tick order %q, got %q", "uffufu", got)
	}
	if l.Frames() != 3 || l.FixedSteps() != 3 {
		t.Errorf("expected 3 frames and 3 fixed steps, got %d/%d", l.Frames(), l.FixedSteps())
	}
}

func TestFrameDropsBacklog(t *testing.T) {
	clock := timedfsm.NewManualClock(0)
	ticker := &countingTicker{}
	l := New(ticker, clock, Config{FixedStep: 10 * time.Millisecond, MaxFixedSteps: 2}, WithLogger(quietLogger))

	l.Frame()
	clock.Advance(105 * time.Millisecond)
	l.Frame()
	if got := strings.Join(ticker.calls, ""); got != "uffu" {
		t.Fatalf("expected tick order %q, got %q", "uffu", got)
	}

	// Only the 5ms remainder survives the drop.
	ticker.calls = nil
	clock.Advance(4 * time.Millisecond)
	l.Frame()
	if got := strings.Join(ticker.calls, ""); got != "u" {
		t.Errorf("expected no fixed step after backlog drop, got %q", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	l := New(&countingTicker{}, timedfsm.NewManualClock(0), Config{})
	if l.Config() != DefaultConfig() {
		t.Errorf("expected default config %+v, got %+v", DefaultConfig(), l.Config())
	}
}

func TestAfterFrameHooks(t *testing.T) {
	clock := timedfsm.NewManualClock(0)
	ticker := &countingTicker{}
	var seen []string
	l := New(ticker, clock, Config{},
		WithLogger(quietLogger),
		WithAfterFrame(func() { seen = append(seen, strings.Join(ticker.calls, "")) }),
	)

	l.Frame()
	l.Frame()
	if len(seen) != 2 || seen[0] != "u" || seen[1] != "uu" {
		t.Errorf("hooks should run after each frame's update, got %v", seen)
	}
}

func TestLoopDrivesMachine(t *testing.T) {
	clock := timedfsm.NewManualClock(0)
	var fixed int
	done := &timedfsm.Funcs{StateName: "done"}
	run := &timedfsm.Funcs{
		StateName: "run",
		OnFixedUpdate: func() timedfsm.State {
			fixed++
			if fixed == 4 {
				return done
			}
			return nil
		},
	}
	m := timedfsm.New(clock, run, timedfsm.WithLogger(quietLogger))
	l := New(m, clock, Config{FixedStep: 10 * time.Millisecond, MaxFixedSteps: 5}, WithLogger(quietLogger))

	l.Frame()
	clock.Advance(30 * time.Millisecond)
	l.Frame()
	if m.State() != run {
		t.Fatalf("expected run after 3 fixed steps, got %s", timedfsm.NameOf(m.State()))
	}
	clock.Advance(10 * time.Millisecond)
	l.Frame()
	if m.State() != done {
		t.Errorf("expected done after 4 fixed steps, got %s", timedfsm.NameOf(m.State()))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	clock := timedfsm.NewGameClock()
	ticker := &countingTicker{}
	l := New(ticker, clock, Config{FrameInterval: time.Millisecond, FixedStep: time.Millisecond}, WithLogger(quietLogger))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if l.Frames() < 2 {
		t.Errorf("expected several frames, got %d", l.Frames())
	}
}
