//go:build portaudio

// ABOUTME: PortAudio-based audio device
// ABOUTME: Drives render procs from a PortAudio stream callback
package output

import (
	"fmt"
	"log"
	"sync"
	"time"
	"unsafe"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
	"github.com/gordonklaus/portaudio"
)

// PortAudio is a playback device backed by the default PortAudio output stream
type PortAudio struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	name    string
	format  convert.Format
	procs   procTable
	started bool

	// Touched only from the stream callback
	bufs   [1]Buffer
	frames uint64
}

// NewPortAudio opens the default output stream. 24-bit output is carried in
// an int32 container aligned high, like the malgo device.
func NewPortAudio(format convert.Format, bufferFrames int) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p := &PortAudio{format: format, name: "PortAudio default output"}
	if info, err := portaudio.DefaultOutputDevice(); err == nil && info != nil {
		p.name = info.Name
	}

	var callback interface{}
	switch format.Encoding() {
	case convert.Int16:
		callback = func(out []int16) { p.render(bytesOf(out)) }
	case convert.Int24:
		p.format.AlignedHigh = true
		callback = func(out []int32) { p.render(bytesOf(out)) }
	case convert.Int32:
		callback = func(out []int32) { p.render(bytesOf(out)) }
	case convert.Float32:
		callback = func(out []float32) { p.render(bytesOf(out)) }
	default:
		portaudio.Terminate()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	stream, err := portaudio.OpenDefaultStream(0, format.Channels, format.SampleRate, bufferFrames, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	p.stream = stream

	log.Printf("Audio device opened: %s, %s (portaudio)", p.name, p.format)

	return p, nil
}

func (p *PortAudio) render(data []byte) {
	clear(data)
	p.bufs[0] = Buffer{Channels: p.format.Channels, Data: data}
	p.procs.render(p.bufs[:], TimeStamp{SampleTime: p.frames, HostTime: time.Now().UnixNano()})
	if frame := p.format.Channels * p.format.BytesPerSlot(); frame > 0 {
		p.frames += uint64(len(data) / frame)
	}
}

// bytesOf views a typed callback buffer as raw bytes without copying
func bytesOf[T int16 | int32 | float32](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

func (p *PortAudio) ID() string   { return "portaudio:default" }
func (p *PortAudio) Name() string { return p.name }

// OutputStreams returns the single interleaved stream of the device
func (p *PortAudio) OutputStreams() ([]Stream, error) {
	return []Stream{{ID: 0, Name: p.name, Format: p.format}}, nil
}

func (p *PortAudio) CreateIOProc(proc IOProc) (ProcID, error) {
	return p.procs.create(proc)
}

func (p *PortAudio) DestroyIOProc(id ProcID) error {
	if err := p.procs.destroy(id); err != nil {
		return err
	}
	if !p.procs.isRunning() {
		return p.stopStream()
	}
	return nil
}

// Start makes id the running proc and starts the stream
func (p *PortAudio) Start(id ProcID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrDeviceClosed
	}
	if err := p.procs.activate(id); err != nil {
		return err
	}
	if p.started {
		return nil
	}
	if err := p.stream.Start(); err != nil {
		_ = p.procs.deactivate(id)
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.started = true
	return nil
}

// Stop stops the stream; Pa_StopStream waits for pending callbacks
func (p *PortAudio) Stop(id ProcID) error {
	if err := p.procs.deactivate(id); err != nil {
		return err
	}
	return p.stopStream()
}

func (p *PortAudio) stopStream() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil || !p.started {
		return nil
	}
	p.started = false
	return p.stream.Stop()
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		if p.started {
			if err := p.stream.Stop(); err != nil {
				log.Printf("Warning: stream stop error: %v", err)
			}
			p.started = false
		}
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}
	return portaudio.Terminate()
}

// listPortAudio enumerates PortAudio devices with output channels
func listPortAudio() ([]Info, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	var defaultName string
	if def, err := portaudio.DefaultOutputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	var infos []Info
	for i, d := range devices {
		if d.MaxOutputChannels == 0 {
			continue
		}
		infos = append(infos, Info{
			ID:      fmt.Sprintf("portaudio:%d", i),
			Name:    d.Name,
			Default: d.Name == defaultName,
		})
	}
	return infos, nil
}
