// ABOUTME: Player configuration loading
// ABOUTME: Reads the YAML config file and validates output settings
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Sendspin/deviceplayer/pkg/audio/output"
	"gopkg.in/yaml.v3"
)

// Config is the player configuration
type Config struct {
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
	TUI    bool         `yaml:"tui"`
}

// OutputConfig selects and configures the output device
type OutputConfig struct {
	Backend      string `yaml:"backend"`       // malgo, oto, portaudio, null
	Device       string `yaml:"device"`        // name or id substring, empty for default
	Format       string `yaml:"format"`        // s16, s24, s32, f32
	BufferFrames int    `yaml:"buffer_frames"` // frames per render invocation
}

// LogConfig controls log output
type LogConfig struct {
	File string `yaml:"file"` // tee log output to this file
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Backend:      output.BackendMalgo,
			Format:       "f32",
			BufferFrames: output.DefaultBufferFrames,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the output settings
func (c *Config) Validate() error {
	var errs []error

	known := false
	for _, b := range output.Backends() {
		if strings.EqualFold(c.Output.Backend, b) {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("output.backend: unknown backend %q (available: %v)", c.Output.Backend, output.Backends()))
	}

	if _, err := output.ParseSampleFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}

	if c.Output.BufferFrames <= 0 {
		errs = append(errs, fmt.Errorf("output.buffer_frames must be > 0, got %d", c.Output.BufferFrames))
	}

	return errors.Join(errs...)
}

// OutputConfig converts the output settings for a source layout
func (c *Config) OutputConfig(sampleRate, channels int) output.Config {
	return output.Config{
		Backend:      c.Output.Backend,
		Device:       c.Output.Device,
		SampleRate:   sampleRate,
		Channels:     channels,
		Format:       c.Output.Format,
		BufferFrames: c.Output.BufferFrames,
	}
}
