// ABOUTME: Audio type definitions
// ABOUTME: Defines the decoded sample source and sample width helpers
package audio

import (
	"fmt"
	"math"
	"time"
)

const (
	// MaxSample is the largest full-scale sample value
	MaxSample = math.MaxInt32
	// MinSample is the smallest full-scale sample value
	MinSample = math.MinInt32
)

// Source is a fully decoded PCM buffer of interleaved full-scale int32 samples.
// A Source is immutable once handed to a playback session.
type Source struct {
	Samples    []int32 // interleaved, Frames*Channels long
	Frames     int
	Channels   int // interleave stride
	SampleRate int
}

// NewSource validates samples against the frame/channel geometry
func NewSource(samples []int32, channels, sampleRate int) (*Source, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("sample count %d is not a multiple of %d channels", len(samples), channels)
	}

	return &Source{
		Samples:    samples,
		Frames:     len(samples) / channels,
		Channels:   channels,
		SampleRate: sampleRate,
	}, nil
}

// Len returns the total sample count (Frames * Channels)
func (s *Source) Len() int {
	return s.Frames * s.Channels
}

// Duration returns the playback length at the source sample rate
func (s *Source) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.Frames) * time.Second / time.Duration(s.SampleRate)
}

// SampleFromInt16 scales a 16-bit sample to full 32-bit range
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 16
}

// SampleFromBits scales a signed sample of the given bit depth to full 32-bit range
func SampleFromBits(sample int32, bits int) int32 {
	switch {
	case bits >= 32:
		return sample
	case bits <= 0:
		return 0
	default:
		return sample << (32 - bits)
	}
}

// SampleFrom24Bit converts 24-bit packed bytes (little-endian) to a full-scale int32
func SampleFrom24Bit(b [3]byte) int32 {
	// Place the three bytes in the top of the word; the arithmetic
	// shift of the consumer sign-extends naturally.
	return int32(uint32(b[0])<<8 | uint32(b[1])<<16 | uint32(b[2])<<24)
}
