// ABOUTME: Oto-based audio device
// ABOUTME: Drives render procs from oto's pull-based player reads
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
	"github.com/ebitengine/oto/v3"
)

var (
	// oto allows one context per process
	otoOnce    sync.Once
	otoContext *oto.Context
	otoFormat  convert.Format
	otoErr     error
)

// Oto is a playback device backed by an oto player. Every player Read is
// one render invocation.
type Oto struct {
	mu     sync.Mutex
	player *oto.Player
	format convert.Format
	procs  procTable
	closed bool

	// Touched only from the player's read goroutine
	bufs   [1]Buffer
	frames uint64
}

// NewOto creates an oto device. oto supports 16-bit integer and 32-bit
// float output only, and cannot change format once its context exists.
func NewOto(format convert.Format, bufferFrames int) (*Oto, error) {
	var otoFmt oto.Format
	switch format.Encoding() {
	case convert.Int16:
		otoFmt = oto.FormatSignedInt16LE
	case convert.Float32:
		otoFmt = oto.FormatFloat32LE
	default:
		return nil, fmt.Errorf("oto supports s16 and f32 output only, got %s", format)
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   int(format.SampleRate),
			ChannelCount: format.Channels,
			Format:       otoFmt,
			BufferSize:   time.Duration(bufferFrames) * time.Second / time.Duration(format.SampleRate),
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoContext = ctx
		otoFormat = format
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoFormat != format {
		return nil, fmt.Errorf("oto context already running as %s, cannot reopen as %s", otoFormat, format)
	}

	o := &Oto{format: format}
	o.player = otoContext.NewPlayer(o)
	o.player.SetBufferSize(bufferFrames * format.Channels * format.BytesPerSlot())

	log.Printf("Audio device opened: oto default output, %s", format)

	return o, nil
}

// Read implements io.Reader for the oto player. The buffer is zeroed
// before the running proc renders into it; oto formats are little-endian,
// matching every platform oto runs on.
func (o *Oto) Read(p []byte) (int, error) {
	clear(p)
	o.bufs[0] = Buffer{Channels: o.format.Channels, Data: p}
	o.procs.render(o.bufs[:], TimeStamp{SampleTime: o.frames, HostTime: time.Now().UnixNano()})
	if frame := o.format.Channels * o.format.BytesPerSlot(); frame > 0 {
		o.frames += uint64(len(p) / frame)
	}
	return len(p), nil
}

func (o *Oto) ID() string   { return "oto:default" }
func (o *Oto) Name() string { return "System default (oto)" }

// OutputStreams returns the single interleaved stream of the device
func (o *Oto) OutputStreams() ([]Stream, error) {
	return []Stream{{ID: 0, Name: o.Name(), Format: o.format}}, nil
}

func (o *Oto) CreateIOProc(proc IOProc) (ProcID, error) {
	return o.procs.create(proc)
}

func (o *Oto) DestroyIOProc(id ProcID) error {
	if err := o.procs.destroy(id); err != nil {
		return err
	}
	if !o.procs.isRunning() {
		o.pause()
	}
	return nil
}

// Start makes id the running proc and resumes the player
func (o *Oto) Start(id ProcID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrDeviceClosed
	}
	if err := o.procs.activate(id); err != nil {
		return err
	}
	o.player.Play()
	return nil
}

// Stop pauses the player; oto does not call Read on a paused player
func (o *Oto) Stop(id ProcID) error {
	if err := o.procs.deactivate(id); err != nil {
		return err
	}
	o.pause()
	return nil
}

func (o *Oto) pause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed && o.player.IsPlaying() {
		o.player.Pause()
	}
}

// Close releases the player. The process-wide oto context stays alive.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	return o.player.Close()
}
