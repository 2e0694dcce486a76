package states

import (
	"log/slog"
	"sync"
)

// LogPlayer is a Player that only logs what it would play
type LogPlayer struct {
	mu      sync.Mutex
	logger  *slog.Logger
	playing *Clip
	plays   int
}

// NewLogPlayer creates a player logging to logger
func NewLogPlayer(logger *slog.Logger) *LogPlayer {
	return &LogPlayer{logger: logger}
}

func (p *LogPlayer) Play(clip *Clip, loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = clip
	p.plays++
	p.logger.Info("clip playing", "clip", clip.Name, "length", clip.Length, "loop", loop)
}

func (p *LogPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing == nil {
		return
	}
	p.logger.Info("clip stopped", "clip", p.playing.Name)
	p.playing = nil
}

// Playing returns the clip currently playing, or nil
func (p *LogPlayer) Playing() *Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Plays returns how many times Play was called
func (p *LogPlayer) Plays() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}
