// Package host drives a timed state machine the way a game engine does:
// a variable-rate frame and a fixed-rate step, both from one goroutine.
package host

import (
	"context"
	"log/slog"
	"time"

	"github.com/librescoot/timedfsm"
)

// Ticker receives the two host ticks. *timedfsm.Machine implements it.
type Ticker interface {
	Update()
	FixedUpdate()
}

// Config configures the loop cadence
type Config struct {
	FrameInterval time.Duration // Wall time between frames (default: 60 FPS)
	FixedStep     time.Duration // Logical time per fixed step (default: 20ms)
	MaxFixedSteps int           // Fixed steps per frame before the backlog is dropped (default: 5)
}

// DefaultConfig returns the default loop cadence
func DefaultConfig() Config {
	return Config{
		FrameInterval: 16667 * time.Microsecond,
		FixedStep:     20 * time.Millisecond,
		MaxFixedSteps: 5,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FrameInterval <= 0 {
		c.FrameInterval = def.FrameInterval
	}
	if c.FixedStep <= 0 {
		c.FixedStep = def.FixedStep
	}
	if c.MaxFixedSteps <= 0 {
		c.MaxFixedSteps = def.MaxFixedSteps
	}
	return c
}

// Loop invokes a Ticker at a variable and a fixed rate.
// A Loop is not safe for concurrent use; Run and Frame must not overlap.
type Loop struct {
	target Ticker
	clock  timedfsm.Clock
	cfg    Config
	logger *slog.Logger

	afterFrame []func()

	started bool
	last    time.Duration
	backlog time.Duration
	frames  uint64
	steps   uint64
}

// Option is a functional option for configuring a Loop
type Option func(*Loop)

// WithLogger sets the logger for the loop
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithAfterFrame registers a hook run at the end of every frame, on the
// loop goroutine. Hooks may read the machine safely.
func WithAfterFrame(fn func()) Option {
	return func(l *Loop) {
		l.afterFrame = append(l.afterFrame, fn)
	}
}

// New creates a loop ticking target, measuring fixed steps on clock
func New(target Ticker, clock timedfsm.Clock, cfg Config, opts ...Option) *Loop {
	l := &Loop{
		target: target,
		clock:  clock,
		cfg:    cfg.withDefaults(),
		logger: timedfsm.Logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the effective configuration
func (l *Loop) Config() Config {
	return l.cfg
}

// Frame runs one frame: the fixed steps owed since the previous frame,
// then a single Update, then the after-frame hooks.
func (l *Loop) Frame() {
	now := l.clock.Now()
	if !l.started {
		l.started = true
		l.last = now
	}
	if now > l.last {
		l.backlog += now - l.last
	}
	l.last = now

	steps := 0
	for l.backlog >= l.cfg.FixedStep {
		if steps == l.cfg.MaxFixedSteps {
			dropped := l.backlog / l.cfg.FixedStep
			l.logger.Warn("fixed step backlog dropped", "steps", dropped, "backlog", l.backlog)
			l.backlog %= l.cfg.FixedStep
			break
		}
		l.target.FixedUpdate()
		l.backlog -= l.cfg.FixedStep
		steps++
	}
	l.steps += uint64(steps)

	l.target.Update()
	l.frames++

	for _, fn := range l.afterFrame {
		fn()
	}
}

// Run calls Frame every FrameInterval until ctx is done.
// It returns the context's error.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.FrameInterval)
	defer ticker.Stop()

	l.logger.Debug("host loop started", "frame_interval", l.cfg.FrameInterval, "fixed_step", l.cfg.FixedStep)
	l.Frame()
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("host loop stopped", "frames", l.frames, "fixed_steps", l.steps)
			return ctx.Err()
		case <-ticker.C:
			l.Frame()
		}
	}
}

// Frames returns the number of frames run so far
func (l *Loop) Frames() uint64 {
	return l.frames
}

// FixedSteps returns the number of fixed steps run so far
func (l *Loop) FixedSteps() uint64 {
	return l.steps
}
