// ABOUTME: Decoder interface definition
// ABOUTME: Common interface and extension dispatch for file decoders
package decode

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sendspin/deviceplayer/pkg/audio"
)

// Decoder decodes a complete audio stream into a Source
type Decoder interface {
	// Decode reads the whole stream
	Decode(r io.ReadSeeker) (*audio.Source, error)

	// Name returns the codec name
	Name() string
}

// Extensions lists the file extensions NewDecoder understands
func Extensions() []string {
	return []string{".mp3", ".flac", ".wav", ".opus", ".ogg"}
}

// NewDecoder returns the decoder for a file path based on its extension
func NewDecoder(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		return &MP3Decoder{}, nil
	case ".flac":
		return &FLACDecoder{}, nil
	case ".wav", ".wave":
		return &WAVDecoder{}, nil
	case ".opus", ".ogg":
		return &OpusDecoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %q (supported: %s)", ext, strings.Join(Extensions(), ", "))
	}
}

// DecodeFile decodes the audio file at path
func DecodeFile(path string) (*audio.Source, error) {
	decoder, err := NewDecoder(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	src, err := decoder.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	log.Printf("Decoded %s (%s): %d frames, %d channels, %d Hz, %v",
		filepath.Base(path), decoder.Name(), src.Frames, src.Channels, src.SampleRate, src.Duration())

	return src, nil
}
