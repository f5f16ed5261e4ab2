// ABOUTME: Software-clocked null audio device
// ABOUTME: Drives render procs from a ticker for dry runs and tests
package output

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
)

const (
	nullDeviceID   = "null:0"
	nullDeviceName = "Null output"
)

// NullConfig configures a Null device
type NullConfig struct {
	Format       convert.Format
	BufferFrames int

	// Streams overrides the advertised streams. Nil advertises one stream
	// in Format; an empty non-nil slice advertises none.
	Streams []Stream

	// Manual disables the clock goroutine; invocations happen only via Tick
	Manual bool
}

// Null is a device that renders into a private buffer and discards it.
// Its clock runs at the real-time rate of the configured format.
type Null struct {
	cfg   NullConfig
	procs procTable

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
	closed  bool

	renderMu    sync.Mutex // serializes Tick with the clock goroutine
	buf         []byte
	bufs        [1]Buffer
	frames      uint64
	invocations atomic.Int64
}

// NewNull creates a null device
func NewNull(cfg NullConfig) *Null {
	if cfg.BufferFrames <= 0 {
		cfg.BufferFrames = DefaultBufferFrames
	}
	frame := cfg.Format.Channels * cfg.Format.BytesPerSlot()
	return &Null{
		cfg: cfg,
		buf: make([]byte, cfg.BufferFrames*frame),
	}
}

func (n *Null) ID() string   { return nullDeviceID }
func (n *Null) Name() string { return nullDeviceName }

func (n *Null) OutputStreams() ([]Stream, error) {
	if n.cfg.Streams != nil {
		return n.cfg.Streams, nil
	}
	return []Stream{{ID: 0, Name: nullDeviceName, Format: n.cfg.Format}}, nil
}

func (n *Null) CreateIOProc(proc IOProc) (ProcID, error) {
	return n.procs.create(proc)
}

func (n *Null) DestroyIOProc(id ProcID) error {
	if err := n.procs.destroy(id); err != nil {
		return err
	}
	if !n.procs.isRunning() {
		n.stopClock()
	}
	return nil
}

// Start makes id the running proc and starts the clock
func (n *Null) Start(id ProcID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrDeviceClosed
	}
	if err := n.procs.activate(id); err != nil {
		return err
	}
	if n.started {
		return nil
	}
	n.started = true

	if n.cfg.Manual || n.cfg.Format.SampleRate <= 0 {
		return nil
	}

	period := time.Duration(float64(n.cfg.BufferFrames) / n.cfg.Format.SampleRate * float64(time.Second))
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.clock(period, n.stop, n.done)
	log.Printf("Null device clock started: %d frames every %v", n.cfg.BufferFrames, period)
	return nil
}

func (n *Null) clock(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.Tick()
		}
	}
}

// Stop deactivates id and joins the clock goroutine
func (n *Null) Stop(id ProcID) error {
	if err := n.procs.deactivate(id); err != nil {
		return err
	}
	n.stopClock()
	return nil
}

func (n *Null) stopClock() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return
	}
	n.started = false
	if n.stop != nil {
		close(n.stop)
		<-n.done
		n.stop, n.done = nil, nil
	}
}

// Tick runs one render invocation if a proc is running and returns the
// rendered buffer. The slice is reused by the next Tick.
func (n *Null) Tick() []byte {
	n.renderMu.Lock()
	defer n.renderMu.Unlock()

	if !n.procs.isRunning() {
		return nil
	}

	clear(n.buf)
	n.bufs[0] = Buffer{Channels: n.cfg.Format.Channels, Data: n.buf}
	n.procs.render(n.bufs[:], TimeStamp{SampleTime: n.frames, HostTime: time.Now().UnixNano()})
	n.frames += uint64(n.cfg.BufferFrames)
	n.invocations.Add(1)
	return n.buf
}

// Invocations returns how many render invocations have run
func (n *Null) Invocations() int64 {
	return n.invocations.Load()
}

// Running reports whether the device clock is started
func (n *Null) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.started
}

// Close stops the clock and rejects further starts
func (n *Null) Close() error {
	n.stopClock()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}
