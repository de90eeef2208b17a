package config

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2*time.Millisecond, cfg.Engine.PollInterval())
	assert.Equal(t, 2*time.Second, cfg.Engine.StallTimeout())
	assert.Equal(t, 50*time.Millisecond, cfg.Engine.FirstSampleDelay())
	assert.Equal(t, 5*time.Second, cfg.Recorder.StartDelay())
	assert.Equal(t, 14, cfg.Primitives.DodgeThresholdFrames)
	assert.True(t, cfg.Primitives.MergeHoldShorter)
	assert.Equal(t, "DARK SOULS", cfg.Hook.WindowTitle)
}

func TestLoader_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"dstas.json": &fstest.MapFile{Data: []byte(`{
			"engine": {"pollIntervalMs": 4, "stallTimeoutMs": 5000},
			"recorder": {"armOnAnyInput": true},
			"hook": {"windowTitle": "DARK SOULS III"}
		}`)},
	}

	cfg, err := NewFSLoader(fsys).Load("dstas.json")
	require.NoError(t, err)

	assert.Equal(t, 4*time.Millisecond, cfg.Engine.PollInterval())
	assert.Equal(t, 5*time.Second, cfg.Engine.StallTimeout())
	assert.True(t, cfg.Recorder.ArmOnAnyInput)
	assert.Equal(t, "DARK SOULS III", cfg.Hook.WindowTitle)

	// Absent fields keep their defaults.
	assert.Equal(t, 14, cfg.Primitives.DodgeThresholdFrames)
	assert.True(t, cfg.Primitives.MergeHoldShorter)
	assert.Equal(t, 5, cfg.Recorder.StartDelaySec)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewFSLoader(fstest.MapFS{}).Load("dstas.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoader_BadJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"dstas.json": &fstest.MapFile{Data: []byte("{nope")},
	}

	_, err := NewFSLoader(fsys).Load("dstas.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero poll interval", func(c *Config) { c.Engine.PollIntervalMS = 0 }},
		{"stall timeout below poll", func(c *Config) { c.Engine.StallTimeoutMS = 1 }},
		{"negative start delay", func(c *Config) { c.Recorder.StartDelaySec = -1 }},
		{"zero dodge threshold", func(c *Config) { c.Primitives.DodgeThresholdFrames = 0 }},
		{"empty window title", func(c *Config) { c.Hook.WindowTitle = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
