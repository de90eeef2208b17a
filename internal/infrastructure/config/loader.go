package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// EngineConfig holds playback timing values.
type EngineConfig struct {
	PollIntervalMS     int  `json:"pollIntervalMs"`
	StallTimeoutMS     int  `json:"stallTimeoutMs"`
	FirstSampleDelayMS int  `json:"firstSampleDelayMs"`
	NoInitialWait      bool `json:"noInitialWait"`
}

// PollInterval returns the clock poll interval as a duration.
func (c EngineConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// StallTimeout returns the stall timeout as a duration.
func (c EngineConfig) StallTimeout() time.Duration {
	return time.Duration(c.StallTimeoutMS) * time.Millisecond
}

// FirstSampleDelay returns the ungated first-sample delay as a duration.
func (c EngineConfig) FirstSampleDelay() time.Duration {
	return time.Duration(c.FirstSampleDelayMS) * time.Millisecond
}

// RecorderConfig holds recording session values.
type RecorderConfig struct {
	StartDelaySec int  `json:"startDelaySec"`
	ArmOnAnyInput bool `json:"armOnAnyInput"`
}

// StartDelay returns the pre-arming delay as a duration.
func (c RecorderConfig) StartDelay() time.Duration {
	return time.Duration(c.StartDelaySec) * time.Second
}

// PrimitivesConfig tunes the movement primitives table.
type PrimitivesConfig struct {
	// DodgeThresholdFrames is the sprint hold below which the game
	// produces a dodge instead of a sustained sprint.
	DodgeThresholdFrames int `json:"dodgeThresholdFrames"`
	// MergeHoldShorter keeps the shorter operand of a merge held through
	// the longer operand's trailing frames.
	MergeHoldShorter bool `json:"mergeHoldShorter"`
}

// HookConfig identifies the target process.
type HookConfig struct {
	WindowTitle string `json:"windowTitle"`
}

// Config holds all loaded configuration.
type Config struct {
	Engine     EngineConfig     `json:"engine"`
	Recorder   RecorderConfig   `json:"recorder"`
	Primitives PrimitivesConfig `json:"primitives"`
	Hook       HookConfig       `json:"hook"`
}

// Default returns the built-in configuration, tuned for the 30fps target.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			PollIntervalMS:     2,
			StallTimeoutMS:     2000,
			FirstSampleDelayMS: 50,
		},
		Recorder: RecorderConfig{
			StartDelaySec: 5,
		},
		Primitives: PrimitivesConfig{
			DodgeThresholdFrames: 14,
			MergeHoldShorter:     true,
		},
		Hook: HookConfig{
			WindowTitle: "DARK SOULS",
		},
	}
}

// Validate checks the configuration for nonsensical values.
func (c Config) Validate() error {
	if c.Engine.PollIntervalMS < 1 {
		return fmt.Errorf("engine.pollIntervalMs must be >= 1, got %d", c.Engine.PollIntervalMS)
	}
	if c.Engine.StallTimeoutMS <= c.Engine.PollIntervalMS {
		return fmt.Errorf("engine.stallTimeoutMs must exceed the poll interval, got %d", c.Engine.StallTimeoutMS)
	}
	if c.Recorder.StartDelaySec < 0 {
		return fmt.Errorf("recorder.startDelaySec must be >= 0, got %d", c.Recorder.StartDelaySec)
	}
	if c.Primitives.DodgeThresholdFrames < 1 {
		return fmt.Errorf("primitives.dodgeThresholdFrames must be >= 1, got %d", c.Primitives.DodgeThresholdFrames)
	}
	if c.Hook.WindowTitle == "" {
		return fmt.Errorf("hook.windowTitle must not be empty")
	}
	return nil
}

// Loader loads configuration from JSON files using the fs.FS interface.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a config loader from a filesystem path.
func NewLoader(basePath string) *Loader {
	return &Loader{fsys: os.DirFS(basePath)}
}

// NewFSLoader creates a config loader from an fs.FS.
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load reads the named JSON file over the defaults, so absent fields keep
// their built-in values.
func (l *Loader) Load(name string) (Config, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", name, err)
	}
	return cfg, nil
}
