package timedfsm

import (
	"sync"
	"time"
)

// Clock is the logical time source of a Machine.
// Now returns the time elapsed since the clock's origin and must never
// decrease between calls.
type Clock interface {
	Now() time.Duration
}

// ManualClock is a Clock that only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManualClock creates a manual clock reading start
func NewManualClock(start time.Duration) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Moving backwards is ignored.
func (c *ManualClock) Set(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}

// Advance moves the clock forward by d. Negative values are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
}

// GameClock is a wall-backed Clock that can be paused and scaled.
// Logical time only accumulates while running, at Scale times wall speed.
type GameClock struct {
	mu      sync.Mutex
	wall    func() time.Time
	last    time.Time
	elapsed time.Duration
	scale   float64
	paused  bool
}

// GameClockOption is a functional option for configuring a GameClock
type GameClockOption func(*GameClock)

// WithWallSource replaces time.Now as the wall time source
func WithWallSource(fn func() time.Time) GameClockOption {
	return func(c *GameClock) {
		c.wall = fn
	}
}

// WithScale sets the initial time scale
func WithScale(scale float64) GameClockOption {
	return func(c *GameClock) {
		c.scale = clampScale(scale)
	}
}

// NewGameClock creates a running game clock reading zero
func NewGameClock(opts ...GameClockOption) *GameClock {
	c := &GameClock{
		wall:  time.Now,
		scale: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.last = c.wall()
	return c
}

func (c *GameClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sync()
	return c.elapsed
}

// Pause stops logical time
func (c *GameClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sync()
	c.paused = true
}

// Resume restarts logical time after Pause
func (c *GameClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sync()
	c.paused = false
}

// Paused reports whether the clock is paused
func (c *GameClock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// SetScale changes the speed of logical time. Negative scales are clamped to 0.
func (c *GameClock) SetScale(scale float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sync()
	c.scale = clampScale(scale)
}

// Scale returns the current time scale
func (c *GameClock) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// sync folds wall time since the last reading into elapsed. Caller holds mu.
func (c *GameClock) sync() {
	now := c.wall()
	delta := now.Sub(c.last)
	c.last = now
	if c.paused || delta <= 0 {
		return
	}
	c.elapsed += time.Duration(float64(delta) * c.scale)
}

func clampScale(scale float64) float64 {
	if scale < 0 {
		return 0
	}
	return scale
}
