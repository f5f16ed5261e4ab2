// ABOUTME: Audio device interface definition
// ABOUTME: Device handles, output streams and render proc registration
package output

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
)

var (
	ErrNilProc      = errors.New("render proc is nil")
	ErrUnknownProc  = errors.New("unknown render proc")
	ErrDeviceClosed = errors.New("device closed")
)

// Status is returned by a render invocation. Devices ignore non-zero values
// but may count them.
type Status int32

const (
	StatusOK Status = 0
)

// TimeStamp carries device clock information for one render invocation
type TimeStamp struct {
	SampleTime uint64 // frames rendered by the device before this invocation
	HostTime   int64  // host clock in nanoseconds
}

// Buffer is one device-provided buffer. For interleaved output a BufferList
// holds exactly one Buffer carrying every channel.
type Buffer struct {
	Channels int
	Data     []byte
}

// BufferList is the set of buffers handed to a render invocation
type BufferList []Buffer

// IOProc renders output for a device. Render is called on the device's
// real-time thread and must not block or allocate. Invocations for one
// registration never overlap.
type IOProc interface {
	Render(in BufferList, inTime TimeStamp, out BufferList, outTime TimeStamp) Status
}

// ProcID identifies a registered IOProc on a device
type ProcID uint64

// Stream describes one output stream of a device
type Stream struct {
	ID     int
	Name   string
	Format convert.Format // virtual format
}

// Device is an audio output device that pulls samples from registered render procs
type Device interface {
	// ID returns a stable identifier for the device
	ID() string

	// Name returns a human readable device name
	Name() string

	// OutputStreams lists the device's output streams
	OutputStreams() ([]Stream, error)

	// CreateIOProc registers a render proc and returns its token
	CreateIOProc(proc IOProc) (ProcID, error)

	// DestroyIOProc unregisters a render proc, stopping it if running
	DestroyIOProc(id ProcID) error

	// Start begins invoking the render proc from the device clock
	Start(id ProcID) error

	// Stop ceases invoking the render proc. No invocation is in flight
	// once Stop returns.
	Stop(id ProcID) error

	// Close releases device resources
	Close() error
}

// procEntry is an immutable registration record
type procEntry struct {
	id   ProcID
	proc IOProc
}

// procTable tracks registered procs for a device. Only one proc runs at a
// time; the running entry is read lock-free from the render thread.
type procTable struct {
	mu      sync.Mutex
	next    ProcID
	procs   map[ProcID]*procEntry
	running atomic.Pointer[procEntry]
}

func (t *procTable) create(proc IOProc) (ProcID, error) {
	if proc == nil {
		return 0, ErrNilProc
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.procs == nil {
		t.procs = make(map[ProcID]*procEntry)
	}
	t.next++
	t.procs[t.next] = &procEntry{id: t.next, proc: proc}
	return t.next, nil
}

func (t *procTable) destroy(id ProcID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.procs[id]; !ok {
		return ErrUnknownProc
	}
	delete(t.procs, id)
	if e := t.running.Load(); e != nil && e.id == id {
		t.running.Store(nil)
	}
	return nil
}

// activate marks id as the running proc
func (t *procTable) activate(id ProcID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.procs[id]
	if !ok {
		return ErrUnknownProc
	}
	t.running.Store(e)
	return nil
}

// deactivate clears id if it is the running proc
func (t *procTable) deactivate(id ProcID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.procs[id]; !ok {
		return ErrUnknownProc
	}
	if e := t.running.Load(); e != nil && e.id == id {
		t.running.Store(nil)
	}
	return nil
}

// isRunning reports whether any proc is active
func (t *procTable) isRunning() bool {
	return t.running.Load() != nil
}

// render dispatches one invocation to the running proc, if any
func (t *procTable) render(out BufferList, outTime TimeStamp) Status {
	e := t.running.Load()
	if e == nil {
		return StatusOK
	}
	return e.proc.Render(nil, TimeStamp{}, out, outTime)
}

