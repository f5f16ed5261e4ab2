// ABOUTME: Device selection and backend factory
// ABOUTME: Opens a playback device for a configured backend and sample format
package output

import (
	"fmt"
	"strings"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
)

// Backend names accepted by Open
const (
	BackendMalgo     = "malgo"
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

// DefaultBufferFrames is the render size used when none is configured
const DefaultBufferFrames = 512

// Config selects and configures an output device
type Config struct {
	Backend      string
	Device       string // case-insensitive name match, empty for the default device
	SampleRate   int
	Channels     int
	Format       string // s16, s24, s32 or f32
	BufferFrames int
}

// Info describes an available output device
type Info struct {
	ID      string
	Name    string
	Default bool
}

// Backends returns the backend names Open understands
func Backends() []string {
	return []string{BackendMalgo, BackendOto, BackendPortAudio, BackendNull}
}

// ParseSampleFormat maps a format name onto a stream descriptor
func ParseSampleFormat(name string) (convert.Format, error) {
	switch strings.ToLower(name) {
	case "s16":
		return convert.Format{BitsPerChannel: 16}, nil
	case "s24":
		return convert.Format{BitsPerChannel: 24, AlignedHigh: true}, nil
	case "s32":
		return convert.Format{BitsPerChannel: 32}, nil
	case "f32", "":
		return convert.Format{BitsPerChannel: 32, Float: true}, nil
	default:
		return convert.Format{}, fmt.Errorf("unsupported sample format: %s (supported: s16, s24, s32, f32)", name)
	}
}

// StreamFormat returns the virtual format the device should present
func (c Config) StreamFormat() (convert.Format, error) {
	f, err := ParseSampleFormat(c.Format)
	if err != nil {
		return convert.Format{}, err
	}
	if c.SampleRate <= 0 {
		return convert.Format{}, fmt.Errorf("invalid sample rate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return convert.Format{}, fmt.Errorf("invalid channel count: %d", c.Channels)
	}
	f.SampleRate = float64(c.SampleRate)
	f.Channels = c.Channels
	return f, nil
}

func (c Config) bufferFrames() int {
	if c.BufferFrames <= 0 {
		return DefaultBufferFrames
	}
	return c.BufferFrames
}

// Open creates a device for the configured backend
func Open(cfg Config) (Device, error) {
	format, err := cfg.StreamFormat()
	if err != nil {
		return nil, err
	}

	var dev Device
	switch strings.ToLower(cfg.Backend) {
	case BackendMalgo, "":
		m, err := NewMalgo(cfg.Device, format, cfg.bufferFrames())
		if err != nil {
			return nil, err
		}
		dev = m
	case BackendOto:
		o, err := NewOto(format, cfg.bufferFrames())
		if err != nil {
			return nil, err
		}
		dev = o
	case BackendPortAudio:
		p, err := NewPortAudio(format, cfg.bufferFrames())
		if err != nil {
			return nil, err
		}
		dev = p
	case BackendNull:
		dev = NewNull(NullConfig{Format: format, BufferFrames: cfg.bufferFrames()})
	default:
		return nil, fmt.Errorf("unknown backend: %s (supported: %s)", cfg.Backend, strings.Join(Backends(), ", "))
	}
	return dev, nil
}

// List enumerates output devices for a backend
func List(backend string) ([]Info, error) {
	switch strings.ToLower(backend) {
	case BackendMalgo, "":
		return listMalgo()
	case BackendPortAudio:
		return listPortAudio()
	case BackendOto:
		return []Info{{ID: "oto:default", Name: "System default (oto)", Default: true}}, nil
	case BackendNull:
		return []Info{{ID: nullDeviceID, Name: nullDeviceName, Default: true}}, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (supported: %s)", backend, strings.Join(Backends(), ", "))
	}
}

// matchDevice picks the device whose name contains want, or the default
// device when want is empty
func matchDevice(devices []Info, want string) (Info, error) {
	if len(devices) == 0 {
		return Info{}, fmt.Errorf("no playback devices available")
	}

	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		for _, d := range devices {
			if d.Default {
				return d, nil
			}
		}
		return devices[0], nil
	}

	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), want) {
			return d, nil
		}
	}
	return Info{}, fmt.Errorf("no playback device matching %q", want)
}
