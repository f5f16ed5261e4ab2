//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio always fails without the portaudio build tag
func NewPortAudio(format convert.Format, bufferFrames int) (*PortAudio, error) {
	return nil, errPortAudioDisabled
}

func listPortAudio() ([]Info, error) {
	return nil, errPortAudioDisabled
}

func (p *PortAudio) ID() string                               { return "portaudio:disabled" }
func (p *PortAudio) Name() string                             { return "PortAudio (disabled)" }
func (p *PortAudio) OutputStreams() ([]Stream, error)         { return nil, errPortAudioDisabled }
func (p *PortAudio) CreateIOProc(proc IOProc) (ProcID, error) { return 0, errPortAudioDisabled }
func (p *PortAudio) DestroyIOProc(id ProcID) error            { return errPortAudioDisabled }
func (p *PortAudio) Start(id ProcID) error                    { return errPortAudioDisabled }
func (p *PortAudio) Stop(id ProcID) error                     { return errPortAudioDisabled }
func (p *PortAudio) Close() error                             { return errPortAudioDisabled }
