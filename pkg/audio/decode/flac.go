// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC streams of any bit depth to full-scale int32 samples
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/deviceplayer/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

func (d *FLACDecoder) Name() string { return "flac" }

// Decode parses every frame of a FLAC stream and interleaves the subframes
func (d *FLACDecoder) Decode(r io.ReadSeeker) (*audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC stream: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels == 0 {
		return nil, fmt.Errorf("invalid FLAC channel count: %d", channels)
	}

	samples := make([]int32, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.SampleFromBits(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	return audio.NewSource(samples, channels, int(info.SampleRate))
}
