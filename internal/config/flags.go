// ABOUTME: Command-line overrides for the player configuration
// ABOUTME: Only flags given explicitly replace config file values
package config

import (
	"flag"
)

// Overrides holds the flags bound by RegisterFlags
type Overrides struct {
	fs *flag.FlagSet

	backend      *string
	device       *string
	format       *string
	bufferFrames *int
	logFile      *string
	tui          *bool
}

// RegisterFlags binds the configuration flags on fs
func RegisterFlags(fs *flag.FlagSet) *Overrides {
	def := Default()
	return &Overrides{
		fs:           fs,
		backend:      fs.String("backend", def.Output.Backend, "Output backend (malgo, oto, portaudio, null)"),
		device:       fs.String("device", "", "Output device name or id (default: system default)"),
		format:       fs.String("format", def.Output.Format, "Device sample format (s16, s24, s32, f32)"),
		bufferFrames: fs.Int("buffer-frames", def.Output.BufferFrames, "Frames per render callback"),
		logFile:      fs.String("log-file", "", "Also write logs to this file"),
		tui:          fs.Bool("tui", false, "Show the progress TUI instead of waiting for Enter"),
	}
}

// Apply copies every flag that was set on the command line into cfg.
// Call after the flag set has been parsed.
func (o *Overrides) Apply(cfg *Config) {
	o.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Output.Backend = *o.backend
		case "device":
			cfg.Output.Device = *o.device
		case "format":
			cfg.Output.Format = *o.format
		case "buffer-frames":
			cfg.Output.BufferFrames = *o.bufferFrames
		case "log-file":
			cfg.Log.File = *o.logFile
		case "tui":
			cfg.TUI = *o.tui
		}
	})
}
