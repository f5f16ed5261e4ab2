// ABOUTME: Audio device tests
// ABOUTME: Verifies proc registration, the null device clock and device selection
package output

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
)

var (
	_ Device = (*Malgo)(nil)
	_ Device = (*Oto)(nil)
	_ Device = (*PortAudio)(nil)
	_ Device = (*Null)(nil)
)

// countingProc writes a marker byte and counts invocations
type countingProc struct {
	calls atomic.Int64
	bufs  atomic.Int64
}

func (p *countingProc) Render(in BufferList, inTime TimeStamp, out BufferList, outTime TimeStamp) Status {
	p.calls.Add(1)
	p.bufs.Store(int64(len(out)))
	if len(out) > 0 && len(out[0].Data) > 0 {
		out[0].Data[0] = 0x7F
	}
	return StatusOK
}

func testFormat() convert.Format {
	return convert.Format{SampleRate: 48000, Channels: 2, BitsPerChannel: 16}
}

func TestProcTable(t *testing.T) {
	var table procTable

	if _, err := table.create(nil); !errors.Is(err, ErrNilProc) {
		t.Errorf("expected ErrNilProc, got %v", err)
	}

	proc := &countingProc{}
	id, err := table.create(proc)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if table.render(BufferList{{Data: make([]byte, 4)}}, TimeStamp{}); proc.calls.Load() != 0 {
		t.Error("inactive proc should not render")
	}

	if err := table.activate(id); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	table.render(BufferList{{Data: make([]byte, 4)}}, TimeStamp{})
	if proc.calls.Load() != 1 {
		t.Errorf("expected 1 render call, got %d", proc.calls.Load())
	}

	if err := table.activate(id + 1); !errors.Is(err, ErrUnknownProc) {
		t.Errorf("expected ErrUnknownProc, got %v", err)
	}

	if err := table.destroy(id); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}
	if table.isRunning() {
		t.Error("destroyed proc should not be running")
	}
	if err := table.destroy(id); !errors.Is(err, ErrUnknownProc) {
		t.Errorf("expected ErrUnknownProc on double destroy, got %v", err)
	}
}

func TestNullManualTick(t *testing.T) {
	dev := NewNull(NullConfig{Format: testFormat(), BufferFrames: 8, Manual: true})
	defer dev.Close()

	proc := &countingProc{}
	id, err := dev.CreateIOProc(proc)
	if err != nil {
		t.Fatalf("CreateIOProc failed: %v", err)
	}

	if buf := dev.Tick(); buf != nil {
		t.Error("expected no render before Start")
	}

	if err := dev.Start(id); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	buf := dev.Tick()
	if len(buf) != 8*2*2 {
		t.Fatalf("expected 32 byte buffer, got %d", len(buf))
	}
	if buf[0] != 0x7F {
		t.Errorf("expected proc to write marker, got %#x", buf[0])
	}
	if proc.bufs.Load() != 1 {
		t.Errorf("expected a single interleaved buffer, got %d", proc.bufs.Load())
	}

	if err := dev.Stop(id); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if buf := dev.Tick(); buf != nil {
		t.Error("expected no render after Stop")
	}
	if dev.Invocations() != 1 {
		t.Errorf("expected 1 invocation, got %d", dev.Invocations())
	}
}

func TestNullClock(t *testing.T) {
	// 48 frames at 48kHz is a 1ms period
	dev := NewNull(NullConfig{Format: testFormat(), BufferFrames: 48})
	defer dev.Close()

	proc := &countingProc{}
	id, _ := dev.CreateIOProc(proc)
	if err := dev.Start(id); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for proc.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if proc.calls.Load() < 3 {
		t.Fatalf("expected clock to drive renders, got %d", proc.calls.Load())
	}

	if err := dev.Stop(id); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if dev.Running() {
		t.Error("expected clock stopped")
	}

	// Stop joins the clock goroutine, so the count is now fixed
	calls := proc.calls.Load()
	time.Sleep(10 * time.Millisecond)
	if proc.calls.Load() != calls {
		t.Errorf("render ran after Stop: %d -> %d", calls, proc.calls.Load())
	}
}

func TestNullStreams(t *testing.T) {
	dev := NewNull(NullConfig{Format: testFormat()})
	streams, err := dev.OutputStreams()
	if err != nil {
		t.Fatalf("OutputStreams failed: %v", err)
	}
	if len(streams) != 1 || streams[0].Format != testFormat() {
		t.Errorf("unexpected default streams: %+v", streams)
	}

	none := NewNull(NullConfig{Format: testFormat(), Streams: []Stream{}})
	streams, _ = none.OutputStreams()
	if len(streams) != 0 {
		t.Errorf("expected no streams, got %d", len(streams))
	}
}

func TestNullClosed(t *testing.T) {
	dev := NewNull(NullConfig{Format: testFormat(), Manual: true})
	id, _ := dev.CreateIOProc(&countingProc{})
	_ = dev.Close()

	if err := dev.Start(id); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("expected ErrDeviceClosed, got %v", err)
	}
}

func TestParseSampleFormat(t *testing.T) {
	tests := []struct {
		name     string
		expected convert.Encoding
	}{
		{"s16", convert.Int16},
		{"S24", convert.Int24},
		{"s32", convert.Int32},
		{"f32", convert.Float32},
		{"", convert.Float32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseSampleFormat(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Encoding() != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, f.Encoding())
			}
		})
	}

	if _, err := ParseSampleFormat("u8"); err == nil {
		t.Error("expected error for u8")
	}
}

func TestConfigStreamFormat(t *testing.T) {
	f, err := Config{SampleRate: 44100, Channels: 2, Format: "s24"}.StreamFormat()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.SampleRate != 44100 || f.Channels != 2 || !f.AlignedHigh {
		t.Errorf("unexpected format: %+v", f)
	}

	if _, err := (Config{SampleRate: 0, Channels: 2}).StreamFormat(); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := (Config{SampleRate: 48000, Channels: 0}).StreamFormat(); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestOpen(t *testing.T) {
	dev, err := Open(Config{Backend: "null", SampleRate: 48000, Channels: 1, Format: "s16"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer dev.Close()

	if dev.ID() != nullDeviceID {
		t.Errorf("expected null device, got %s", dev.ID())
	}

	if _, err := Open(Config{Backend: "jack", SampleRate: 48000, Channels: 1}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestList(t *testing.T) {
	devices, err := List("null")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(devices) != 1 || !devices[0].Default {
		t.Errorf("unexpected null device list: %+v", devices)
	}

	if _, err := List("jack"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestMatchDevice(t *testing.T) {
	devices := []Info{
		{ID: "a", Name: "Built-in Output"},
		{ID: "b", Name: "USB DAC", Default: true},
		{ID: "c", Name: "HDMI"},
	}

	tests := []struct {
		want     string
		expected string
	}{
		{"", "b"},
		{"usb", "b"},
		{"built-in", "a"},
		{" hdmi ", "c"},
	}

	for _, tt := range tests {
		got, err := matchDevice(devices, tt.want)
		if err != nil {
			t.Fatalf("matchDevice(%q) failed: %v", tt.want, err)
		}
		if got.ID != tt.expected {
			t.Errorf("matchDevice(%q): expected %s, got %s", tt.want, tt.expected, got.ID)
		}
	}

	if _, err := matchDevice(devices, "bluetooth"); err == nil {
		t.Error("expected error for missing device")
	}
	if _, err := matchDevice(nil, ""); err == nil {
		t.Error("expected error for empty device list")
	}

	noDefault := []Info{{ID: "x", Name: "Only"}}
	if got, _ := matchDevice(noDefault, ""); got.ID != "x" {
		t.Errorf("expected first device when none is default, got %s", got.ID)
	}
}

func TestMalgoFormat(t *testing.T) {
	_, adv, err := malgoFormat(convert.Format{BitsPerChannel: 24})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adv.AlignedHigh {
		t.Error("24-bit malgo output must be advertised aligned high")
	}

	if _, _, err := malgoFormat(convert.Format{BitsPerChannel: 8}); err == nil {
		t.Error("expected error for 8-bit output")
	}
}
