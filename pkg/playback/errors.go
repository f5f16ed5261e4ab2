// ABOUTME: Playback session errors
// ABOUTME: Sentinel and typed errors for configuration failures
package playback

import (
	"errors"
	"fmt"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
)

var (
	ErrNoDevice       = errors.New("no audio device bound")
	ErrNoOutputStream = errors.New("device has no output streams")
	ErrNotStarted     = errors.New("session not started")
	ErrClosed         = errors.New("session closed")
)

// RegistrationError reports that a device rejected the render proc
type RegistrationError struct {
	DeviceID string
	Err      error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register render proc on device %s: %v", e.DeviceID, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError reports a device stream format that cannot be rendered
type UnsupportedFormatError struct {
	Format convert.Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %s (supported: 16-bit, 24-bit, 32-bit int, 32-bit float)", e.Format)
}
