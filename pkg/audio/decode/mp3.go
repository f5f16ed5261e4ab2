// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 streams to full-scale int32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Sendspin/deviceplayer/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// mp3Channels is fixed; go-mp3 always outputs 16-bit stereo
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

func (d *MP3Decoder) Name() string { return "mp3" }

// Decode converts an MP3 stream to int32 samples
func (d *MP3Decoder) Decode(r io.ReadSeeker) (*audio.Source, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// Convert bytes to int16 then scale to 32-bit
	numSamples := len(pcm) / 2
	numSamples -= numSamples % mp3Channels
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}

	return audio.NewSource(samples, mp3Channels, decoder.SampleRate())
}
