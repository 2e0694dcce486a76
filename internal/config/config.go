// Package config loads the clip sequence played by the timedfsm CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/librescoot/timedfsm/host"
)

// ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("invalid config")

// Config is the on-disk configuration of a playback run
type Config struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
	FixedStep     time.Duration `yaml:"fixed_step"`
	MaxFixedSteps int           `yaml:"max_fixed_steps"`
	TimeScale     float64       `yaml:"time_scale"`
	DebugAddr     string        `yaml:"debug_addr"`
	Repeat        bool          `yaml:"repeat"` // Chain the last clip back to the first
	Clips         []Clip        `yaml:"clips"`
}

// Clip describes one audio clip state
type Clip struct {
	Name   string        `yaml:"name"`
	Length time.Duration `yaml:"length"`
	Wait   bool          `yaml:"wait"`  // Dwell for the clip length
	Delay  time.Duration `yaml:"delay"` // Explicit dwell, exclusive with Wait
	Loop   bool          `yaml:"loop"`
}

// Default returns the configuration used for absent keys
func Default() *Config {
	def := host.DefaultConfig()
	return &Config{
		FrameInterval: def.FrameInterval,
		FixedStep:     def.FixedStep,
		MaxFixedSteps: def.MaxFixedSteps,
		TimeScale:     1,
	}
}

// Load reads and validates the config file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the player cannot run
func (c *Config) Validate() error {
	if c.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame_interval must be positive", ErrInvalid)
	}
	if c.FixedStep <= 0 {
		return fmt.Errorf("%w: fixed_step must be positive", ErrInvalid)
	}
	if c.MaxFixedSteps <= 0 {
		return fmt.Errorf("%w: max_fixed_steps must be positive", ErrInvalid)
	}
	if c.TimeScale < 0 {
		return fmt.Errorf("%w: time_scale must not be negative", ErrInvalid)
	}
	if len(c.Clips) == 0 {
		return fmt.Errorf("%w: no clips", ErrInvalid)
	}
	for i, clip := range c.Clips {
		if clip.Name == "" {
			return fmt.Errorf("%w: clip %d has no name", ErrInvalid, i)
		}
		if clip.Length < 0 || clip.Delay < 0 {
			return fmt.Errorf("%w: clip %q has a negative duration", ErrInvalid, clip.Name)
		}
		if clip.Wait && clip.Delay > 0 {
			return fmt.Errorf("%w: clip %q sets both wait and delay", ErrInvalid, clip.Name)
		}
	}
	return nil
}

// Host returns the loop cadence
func (c *Config) Host() host.Config {
	return host.Config{
		FrameInterval: c.FrameInterval,
		FixedStep:     c.FixedStep,
		MaxFixedSteps: c.MaxFixedSteps,
	}
}
