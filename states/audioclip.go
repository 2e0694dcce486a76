// Package states holds ready-made timedfsm states bound to domain actions.
package states

import (
	"time"

	"github.com/librescoot/timedfsm"
)

// Clip is a playable audio clip
type Clip struct {
	Name   string
	Length time.Duration
}

// Player is an audio output a clip state plays through
type Player interface {
	Play(clip *Clip, loop bool)
	Stop()
}

// AudioClip plays a clip while it is the current state.
//
// Its dwell time is the configured delay, so a machine keeps the clip
// playing at least that long. A follow-up state set with WithNext is
// requested from Enter; since the machine refuses changes while a state is
// being entered, the request is queued until the delay has passed.
type AudioClip struct {
	timedfsm.Base

	machine timedfsm.Changer
	player  Player
	clip    *Clip
	delay   time.Duration
	loop    bool
	next    timedfsm.State
}

// AudioClipOption is a functional option for configuring an AudioClip
type AudioClipOption func(*AudioClip)

// WithDelay sets the minimum time the clip stays current
func WithDelay(d time.Duration) AudioClipOption {
	return func(s *AudioClip) {
		s.delay = d
	}
}

// WithClipLengthDelay keeps the clip current for its full length.
// It has no effect on a nil clip.
func WithClipLengthDelay() AudioClipOption {
	return func(s *AudioClip) {
		if s.clip != nil {
			s.delay = s.clip.Length
		}
	}
}

// WithLoop makes the player loop the clip until the state exits
func WithLoop() AudioClipOption {
	return func(s *AudioClip) {
		s.loop = true
	}
}

// WithNext queues next as soon as the clip state is entered
func WithNext(next timedfsm.State) AudioClipOption {
	return func(s *AudioClip) {
		s.next = next
	}
}

// NewAudioClip creates a clip state. m is a non-owning handle to the
// machine the state will run in. A nil clip plays nothing and has no dwell.
func NewAudioClip(m timedfsm.Changer, player Player, clip *Clip, opts ...AudioClipOption) *AudioClip {
	s := &AudioClip{
		machine: m,
		player:  player,
		clip:    clip,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNext replaces the follow-up state. Used to build cyclic chains.
func (s *AudioClip) SetNext(next timedfsm.State) {
	s.next = next
}

func (s *AudioClip) Enter() time.Duration {
	if s.next != nil {
		s.machine.ChangeStateDelayed(s.next)
	}
	if s.clip == nil {
		return 0
	}
	s.player.Play(s.clip, s.loop)
	return s.delay
}

func (s *AudioClip) Exit() {
	s.player.Stop()
}

// Name returns "AudioClip(<clip name>)"
func (s *AudioClip) Name() string {
	if s.clip == nil {
		return "AudioClip(silence)"
	}
	return "AudioClip(" + s.clip.Name + ")"
}
