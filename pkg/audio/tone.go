// ABOUTME: Test tone generator
// ABOUTME: Builds a sine wave Source for checking device output without a file
package audio

import (
	"fmt"
	"math"
	"time"
)

// toneLevel keeps generated tones at half scale
const toneLevel = 0.5

// NewTone renders a sine wave of the given frequency and duration, duplicated
// to every channel
func NewTone(frequency float64, duration time.Duration, sampleRate, channels int) (*Source, error) {
	if frequency <= 0 || frequency >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("invalid tone frequency: %vHz at %dHz", frequency, sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	frames := int(duration.Seconds() * float64(sampleRate))
	samples := make([]int32, frames*channels)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(sampleRate)
		value := int32(math.Sin(2*math.Pi*frequency*t) * float64(MaxSample) * toneLevel)

		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = value
		}
	}

	return NewSource(samples, channels, sampleRate)
}
