package inspect

import (
	"sync"
	"time"

	"github.com/librescoot/timedfsm"
)

// Source is anything that can produce a snapshot. *timedfsm.Machine implements it.
type Source interface {
	Snapshot() timedfsm.Snapshot
}

// Recorder keeps the latest snapshot of a machine for other goroutines
type Recorder struct {
	mu       sync.RWMutex
	snap     timedfsm.Snapshot
	at       time.Time
	captures uint64

	now     func() time.Time
	metrics *Metrics
}

// RecorderOption is a functional option for configuring a Recorder
type RecorderOption func(*Recorder)

// WithMetrics updates the dwell gauge of m on every capture
func WithMetrics(m *Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithTimeSource replaces time.Now for capture timestamps
func WithTimeSource(fn func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = fn
	}
}

// NewRecorder creates an empty recorder
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Capture stores src's snapshot. It must run on the goroutine that owns src.
func (r *Recorder) Capture(src Source) {
	snap := src.Snapshot()
	if r.metrics != nil {
		r.metrics.ObserveSnapshot(snap)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
	r.at = r.now()
	r.captures++
}

// Latest returns the last captured snapshot and its capture time.
// ok is false until the first capture.
func (r *Recorder) Latest() (snap timedfsm.Snapshot, at time.Time, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap, r.at, r.captures > 0
}

// Captures returns how many snapshots have been captured
func (r *Recorder) Captures() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.captures
}
