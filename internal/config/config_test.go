package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
fixed_step: 10ms
time_scale: 0.5
debug_addr: ":2112"
repeat: true
clips:
  - name: intro
    length: 1.5s
    wait: true
  - name: theme
    length: 30s
    delay: 5s
    loop: true
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.FixedStep)
	assert.Equal(t, Default().FrameInterval, cfg.FrameInterval, "absent keys keep defaults")
	assert.Equal(t, 0.5, cfg.TimeScale)
	assert.Equal(t, ":2112", cfg.DebugAddr)
	assert.True(t, cfg.Repeat)

	require.Len(t, cfg.Clips, 2)
	assert.Equal(t, Clip{Name: "intro", Length: 1500 * time.Millisecond, Wait: true}, cfg.Clips[0])
	assert.Equal(t, Clip{Name: "theme", Length: 30 * time.Second, Delay: 5 * time.Second, Loop: true}, cfg.Clips[1])

	h := cfg.Host()
	assert.Equal(t, 10*time.Millisecond, h.FixedStep)
	assert.Equal(t, Default().MaxFixedSteps, h.MaxFixedSteps)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ``},
		{"no clips", "time_scale: 1\n"},
		{"unnamed clip", "clips:\n  - length: 1s\n"},
		{"negative length", "clips:\n  - name: a\n    length: -1s\n"},
		{"wait and delay", "clips:\n  - name: a\n    wait: true\n    delay: 1s\n"},
		{"negative scale", "time_scale: -2\nclips:\n  - name: a\n"},
		{"zero fixed step", "fixed_step: 0s\nclips:\n  - name: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("clips:\n  - name: a\n    volume: 3\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clips.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Clips, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
