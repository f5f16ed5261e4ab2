// ABOUTME: Render-path diagnostics
// ABOUTME: Counts render failures lock-free and logs them off the real-time thread
package playback

import (
	"log"
	"sync/atomic"
	"time"
)

// Diagnostic is a condition that made a render invocation write nothing
type Diagnostic int

const (
	DiagNoFormat Diagnostic = iota
	DiagNoSource
	DiagUnsupportedFormat
	DiagNoBuffers
	numDiagnostics
)

func (d Diagnostic) String() string {
	switch d {
	case DiagNoFormat:
		return "no output format"
	case DiagNoSource:
		return "no sample source"
	case DiagUnsupportedFormat:
		return "unsupported output format"
	case DiagNoBuffers:
		return "no output buffers"
	default:
		return "unknown"
	}
}

// DiagnosticCounts is a snapshot of render diagnostics
type DiagnosticCounts struct {
	NoFormat          int64
	NoSource          int64
	UnsupportedFormat int64
	NoBuffers         int64
}

// reportInterval limits repeated log lines for the same diagnostic
const reportInterval = time.Second

type diagnostics struct {
	counts [numDiagnostics]atomic.Int64
	signal chan Diagnostic
	done   chan struct{}
}

func newDiagnostics() *diagnostics {
	return &diagnostics{
		signal: make(chan Diagnostic, 16),
		done:   make(chan struct{}),
	}
}

// report is called from the render thread. It never blocks; signals are
// dropped when the reporter is behind, the count still records them.
func (d *diagnostics) report(kind Diagnostic) {
	d.counts[kind].Add(1)
	select {
	case d.signal <- kind:
	default:
	}
}

func (d *diagnostics) snapshot() DiagnosticCounts {
	return DiagnosticCounts{
		NoFormat:          d.counts[DiagNoFormat].Load(),
		NoSource:          d.counts[DiagNoSource].Load(),
		UnsupportedFormat: d.counts[DiagUnsupportedFormat].Load(),
		NoBuffers:         d.counts[DiagNoBuffers].Load(),
	}
}

// run logs diagnostics until stop is called
func (d *diagnostics) run(sessionID string) {
	var last [numDiagnostics]time.Time

	for {
		select {
		case <-d.done:
			return
		case kind := <-d.signal:
			now := time.Now()
			if now.Sub(last[kind]) < reportInterval {
				continue
			}
			last[kind] = now
			log.Printf("Session %s: render skipped: %s (%d times)", sessionID, kind, d.counts[kind].Load())
		}
	}
}

func (d *diagnostics) stop() {
	close(d.done)
}
