// ABOUTME: Playback session bound to one output device
// ABOUTME: Owns the cursor and depletion state and renders from the device callback
package playback

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/deviceplayer/pkg/audio"
	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
	"github.com/Sendspin/deviceplayer/pkg/audio/output"
	"github.com/google/uuid"
)

// State is the lifecycle state of a Session
type State int32

const (
	StateUninitialized State = iota
	StateConfigured
	StatePlaying
	StateDepleted
	StateStopped
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StatePlaying:
		return "playing"
	case StateDepleted:
		return "depleted"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// quiesceTimeout bounds how long a control operation waits for an
// in-flight render invocation
const quiesceTimeout = time.Second

// Options configures a Session
type Options struct {
	// OnDepleted runs once per pass when the source is exhausted. It is
	// called synchronously on the device's real-time thread and must not
	// block.
	OnDepleted func()
}

// pass is one playback pass over a source. Reset swaps in a fresh pass.
type pass struct {
	source   atomic.Pointer[audio.Source]
	cursor   atomic.Int64 // in samples, not frames
	depleted atomic.Bool
}

// Session plays an audio.Source through a device render proc.
//
// Control methods may be called from any goroutine. The render path reads
// the cross-thread fields through atomics and never takes mu.
type Session struct {
	id         string
	device     output.Device
	proc       output.ProcID
	onDepleted func()

	mu    sync.Mutex
	state State

	format   atomic.Pointer[convert.Format]
	pass     atomic.Pointer[pass]
	inflight atomic.Int32
	diag     *diagnostics
}

// renderProc is the IOProc handed to the device
type renderProc struct {
	s *Session
}

// New registers a session with device. On failure no session is returned
// and the device is left untouched.
func New(device output.Device, opts Options) (*Session, error) {
	if device == nil {
		return nil, ErrNoDevice
	}

	s := &Session{
		id:         uuid.NewString(),
		device:     device,
		onDepleted: opts.OnDepleted,
		diag:       newDiagnostics(),
	}
	s.pass.Store(&pass{})

	proc, err := device.CreateIOProc(renderProc{s: s})
	if err != nil {
		log.Printf("Session %s: error creating render proc on %s: %v", s.id, device.Name(), err)
		return nil, &RegistrationError{DeviceID: device.ID(), Err: err}
	}
	s.proc = proc
	s.state = StateConfigured

	go s.diag.run(s.id)

	log.Printf("Session %s: registered on %s", s.id, device.Name())

	return s, nil
}

// ID returns the session identifier used in log output
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if st == StatePlaying {
		if p := s.pass.Load(); p != nil && p.depleted.Load() {
			return StateDepleted
		}
	}
	return st
}

// Format returns the output format captured by Start
func (s *Session) Format() (convert.Format, bool) {
	f := s.format.Load()
	if f == nil {
		return convert.Format{}, false
	}
	return *f, true
}

// Position returns the cursor and the total sample count of the installed source
func (s *Session) Position() (cursor, total int) {
	p := s.pass.Load()
	if p == nil {
		return 0, 0
	}
	if src := p.source.Load(); src != nil {
		total = src.Len()
	}
	return int(p.cursor.Load()), total
}

// Depleted reports whether the current pass has exhausted its source
func (s *Session) Depleted() bool {
	p := s.pass.Load()
	return p != nil && p.depleted.Load()
}

// Diagnostics returns render diagnostic counters
func (s *Session) Diagnostics() DiagnosticCounts {
	if s.diag == nil {
		return DiagnosticCounts{}
	}
	return s.diag.snapshot()
}

// Start captures the format of the device's first output stream and starts
// the device clock. Calling Start while playing is a no-op.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateUninitialized:
		log.Printf("Session: start: no output device set")
		return ErrNoDevice
	case StateClosed:
		return ErrClosed
	case StatePlaying:
		return nil
	}

	streams, err := s.device.OutputStreams()
	if err != nil {
		return fmt.Errorf("failed to list output streams: %w", err)
	}
	if len(streams) == 0 {
		log.Printf("Session %s: start: couldn't access output streams of %s", s.id, s.device.Name())
		return ErrNoOutputStream
	}

	format := streams[0].Format
	if !format.Supported() {
		log.Printf("Session %s: start: %s cannot be rendered", s.id, format)
		return &UnsupportedFormatError{Format: format}
	}
	s.format.Store(&format)

	if err := s.device.Start(s.proc); err != nil {
		return fmt.Errorf("failed to start device %s: %w", s.device.Name(), err)
	}
	s.state = StatePlaying

	log.Printf("Session %s: playing on %s (%s)", s.id, s.device.Name(), format)

	return nil
}

// Stop stops the device clock and waits for any in-flight render to finish.
// Stopping a stopped session is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateUninitialized:
		log.Printf("Session: stop: no output device set")
		return ErrNoDevice
	case StateConfigured:
		log.Printf("Session %s: stop: not started", s.id)
		return ErrNotStarted
	case StateStopped:
		return nil
	case StateClosed:
		return ErrClosed
	}

	if err := s.device.Stop(s.proc); err != nil {
		return fmt.Errorf("failed to stop device %s: %w", s.device.Name(), err)
	}
	s.quiesce()
	s.state = StateStopped

	cursor, total := s.Position()
	log.Printf("Session %s: stopped at %d/%d samples", s.id, cursor, total)

	return nil
}

// InstallSource replaces the sample source. The cursor and depletion flag
// are kept; call Reset (or use Load) to play the new source from the start.
// Once InstallSource returns the previous source is no longer read.
func (s *Session) InstallSource(src *audio.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrClosed
	}

	s.currentPass().source.Store(src)
	s.quiesce()
	return nil
}

// Reset rewinds the cursor to the start and clears the depletion flag,
// keeping the installed source
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrClosed
	}

	s.swapPass(s.currentPass().source.Load())
	return nil
}

// Load installs src and rewinds in a single handoff
func (s *Session) Load(src *audio.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrClosed
	}

	s.swapPass(src)
	return nil
}

// Close stops playback if needed and unregisters the render proc
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return nil
	case StateUninitialized:
		s.state = StateClosed
		return nil
	}

	var firstErr error
	if s.state == StatePlaying {
		if err := s.device.Stop(s.proc); err != nil {
			firstErr = fmt.Errorf("failed to stop device %s: %w", s.device.Name(), err)
		}
	}
	if err := s.device.DestroyIOProc(s.proc); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to unregister render proc: %w", err)
	}
	s.quiesce()
	s.state = StateClosed
	s.diag.stop()

	log.Printf("Session %s: closed", s.id)

	return firstErr
}

// currentPass returns the active pass, creating one for a zero Session (must hold s.mu)
func (s *Session) currentPass() *pass {
	p := s.pass.Load()
	if p == nil {
		p = &pass{}
		s.pass.Store(p)
	}
	return p
}

// swapPass publishes a fresh pass over src (must hold s.mu)
func (s *Session) swapPass(src *audio.Source) {
	p := &pass{}
	p.source.Store(src)
	s.pass.Store(p)
	s.quiesce()
}

// quiesce waits until no render invocation is in flight. Any invocation
// that started before a preceding swap has finished once the counter is
// seen at zero.
func (s *Session) quiesce() {
	deadline := time.Now().Add(quiesceTimeout)
	for s.inflight.Load() != 0 {
		if time.Now().After(deadline) {
			log.Printf("Session %s: render still in flight after %v", s.id, quiesceTimeout)
			return
		}
		runtime.Gosched()
	}
}

// Render fills the first output buffer from the source. It runs on the
// device's real-time thread: no locks, no allocation, no logging.
func (r renderProc) Render(_ output.BufferList, _ output.TimeStamp, out output.BufferList, _ output.TimeStamp) output.Status {
	s := r.s
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	format := s.format.Load()
	if format == nil {
		s.diag.report(DiagNoFormat)
		return output.StatusOK
	}

	p := s.pass.Load()
	src := p.source.Load()
	if src == nil {
		s.diag.report(DiagNoSource)
		return output.StatusOK
	}

	// Interleaved output uses one buffer; further buffers are not filled
	if len(out) == 0 {
		s.diag.report(DiagNoBuffers)
		return output.StatusOK
	}

	s.fill(out[0].Data, format, p, src)
	return output.StatusOK
}

// fill converts the next run of samples into dst and fires the depletion
// callback when the pass reaches the end of its source
func (s *Session) fill(dst []byte, format *convert.Format, p *pass, src *audio.Source) int {
	samples := src.Samples
	if total := src.Len(); total < len(samples) {
		samples = samples[:total]
	}
	total := len(samples)

	cursor := int(p.cursor.Load())
	if cursor > total {
		// a shorter source was installed mid-pass
		cursor = total
		p.cursor.Store(int64(cursor))
	}

	written := 0
	if cursor < total {
		if !format.Supported() {
			s.diag.report(DiagUnsupportedFormat)
			return 0
		}
		written = convert.Fill(dst, *format, samples, cursor)
		cursor += written
		p.cursor.Store(int64(cursor))
	}

	if cursor >= total && p.depleted.CompareAndSwap(false, true) {
		if s.onDepleted != nil {
			s.onDepleted()
		}
	}

	return written
}
