// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes Ogg Opus files to full-scale int32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/deviceplayer/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

var ErrNoOpusHead = errors.New("ogg stream has no OpusHead packet")

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

func (d *OpusDecoder) Name() string { return "opus" }

// Decode reads the whole Ogg Opus stream. The channel count comes from the
// OpusHead identification header because the stream reader needs it up front.
func (d *OpusDecoder) Decode(r io.ReadSeeker) (*audio.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read opus stream: %w", err)
	}

	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open opus stream: %w", err)
	}
	defer stream.Close()

	var samples []int32
	pcm16 := make([]int16, 5760*channels) // max frame size
	for {
		n, err := stream.Read(pcm16)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}

		// n is samples per channel
		for _, s := range pcm16[:n*channels] {
			samples = append(samples, audio.SampleFromInt16(s))
		}
	}

	return audio.NewSource(samples, channels, opusSampleRate)
}

// opusChannels extracts the output channel count from the OpusHead header.
// The header is magic(8) version(1) channels(1) ...
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || idx+10 > len(data) {
		return 0, ErrNoOpusHead
	}

	channels := int(data[idx+9])
	if channels == 0 {
		return 0, fmt.Errorf("invalid opus channel count: %d", channels)
	}
	return channels, nil
}
