// ABOUTME: WAV audio decoder
// ABOUTME: Decodes integer PCM WAV files to full-scale int32 samples
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/deviceplayer/pkg/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM format tag
const wavFormatPCM = 1

var ErrInvalidWAV = errors.New("invalid WAV file")

// WAVDecoder decodes integer PCM WAV audio
type WAVDecoder struct{}

func (d *WAVDecoder) Name() string { return "wav" }

// Decode reads the full PCM chunk of a WAV file
func (d *WAVDecoder) Decode(r io.ReadSeeker) (*audio.Source, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("unsupported WAV format tag: %d (supported: PCM)", decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	channels := int(decoder.NumChans)
	if channels == 0 {
		return nil, fmt.Errorf("invalid WAV channel count: %d", channels)
	}

	n := len(buf.Data) - len(buf.Data)%channels
	samples := make([]int32, n)
	for i := 0; i < n; i++ {
		v := int32(buf.Data[i])
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		samples[i] = audio.SampleFromBits(v, bitDepth)
	}

	return audio.NewSource(samples, channels, int(decoder.SampleRate))
}
