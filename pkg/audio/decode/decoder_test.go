// ABOUTME: Tests for decoder dispatch and file decoding
// ABOUTME: Tests extension handling and WAV decoding of generated files
package decode

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestNewDecoder(t *testing.T) {
	tests := []struct {
		path string
		name string
	}{
		{"song.mp3", "mp3"},
		{"song.MP3", "mp3"},
		{"/music/album/track.flac", "flac"},
		{"take.wav", "wav"},
		{"voice.opus", "opus"},
		{"voice.ogg", "opus"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d, err := NewDecoder(tt.path)
			if err != nil {
				t.Fatalf("NewDecoder(%q) failed: %v", tt.path, err)
			}
			if d.Name() != tt.name {
				t.Errorf("expected %s decoder, got %s", tt.name, d.Name())
			}
		})
	}
}

func TestNewDecoderUnknownExtension(t *testing.T) {
	for _, path := range []string{"notes.txt", "noext", "clip.aiff"} {
		if _, err := NewDecoder(path); err == nil {
			t.Errorf("expected error for %q", path)
		} else if !strings.Contains(err.Error(), "unsupported audio format") {
			t.Errorf("unexpected error for %q: %v", path, err)
		}
	}
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}

func writeWAV(t *testing.T, bitDepth, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, bitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: 44100},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close wav encoder: %v", err)
	}
	return path
}

func TestDecodeWAV16(t *testing.T) {
	path := writeWAV(t, 16, 2, []int{0, 1, -1, 32767, -32768, 100})

	src, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}

	if src.Channels != 2 || src.SampleRate != 44100 || src.Frames != 3 {
		t.Fatalf("unexpected layout: %d ch, %d Hz, %d frames", src.Channels, src.SampleRate, src.Frames)
	}

	want := []int32{0, 1 << 16, -1 << 16, 32767 << 16, -32768 << 16, 100 << 16}
	for i, w := range want {
		if src.Samples[i] != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, src.Samples[i])
		}
	}
}

func TestDecodeWAV24(t *testing.T) {
	path := writeWAV(t, 24, 1, []int{8388607, -8388608, 1})

	src, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}

	want := []int32{8388607 << 8, -8388608 << 8, 1 << 8}
	for i, w := range want {
		if src.Samples[i] != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, src.Samples[i])
		}
	}
}

func TestDecodeWAVInvalid(t *testing.T) {
	d := &WAVDecoder{}
	if _, err := d.Decode(bytes.NewReader([]byte("definitely not a wave file"))); err == nil {
		t.Fatal("expected error for invalid WAV data")
	}
}

func TestOpusChannels(t *testing.T) {
	head := append([]byte("OggS\x00\x02"), []byte("OpusHead")...)
	head = append(head, 1, 2, 0x38, 0x01)

	ch, err := opusChannels(head)
	if err != nil {
		t.Fatalf("opusChannels failed: %v", err)
	}
	if ch != 2 {
		t.Errorf("expected 2 channels, got %d", ch)
	}

	if _, err := opusChannels([]byte("OggS no header here")); !errors.Is(err, ErrNoOpusHead) {
		t.Errorf("expected ErrNoOpusHead, got %v", err)
	}

	truncated := append([]byte("OpusHead"), 1)
	if _, err := opusChannels(truncated); !errors.Is(err, ErrNoOpusHead) {
		t.Errorf("expected ErrNoOpusHead for truncated header, got %v", err)
	}
}
