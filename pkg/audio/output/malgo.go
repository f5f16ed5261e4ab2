// ABOUTME: Malgo-based audio device with a real-time render callback
// ABOUTME: Uses miniaudio via malgo to drive registered render procs
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sendspin/deviceplayer/pkg/audio/convert"
	"github.com/gen2brain/malgo"
)

// Malgo is a playback device backed by miniaudio
type Malgo struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	info     Info
	format   convert.Format
	native   malgo.FormatType
	procs    procTable

	// Touched only from the data callback
	bufs   [1]Buffer
	frames uint64
}

// NewMalgo opens the playback device whose name contains name (the default
// device when empty) presenting the given virtual format
func NewMalgo(name string, format convert.Format, bufferFrames int) (*Malgo, error) {
	native, advertised, err := malgoFormat(format)
	if err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		freeMalgoContext(ctx)
		return nil, fmt.Errorf("failed to enumerate playback devices: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = native
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(bufferFrames)
	deviceConfig.Alsa.NoMMap = 1

	info := Info{ID: "malgo:default", Name: "Default playback device", Default: true}
	if len(devices) > 0 || name != "" {
		infos := malgoInfos(devices)
		chosen, err := matchDevice(infos, name)
		if err != nil {
			freeMalgoContext(ctx)
			return nil, err
		}
		for i := range infos {
			if infos[i].ID == chosen.ID {
				deviceConfig.Playback.DeviceID = devices[i].ID.Pointer()
				break
			}
		}
		info = chosen
	}

	m := &Malgo{
		malgoCtx: ctx,
		info:     info,
		format:   advertised,
		native:   native,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: m.dataCallback,
	})
	if err != nil {
		freeMalgoContext(ctx)
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	m.device = device

	log.Printf("Audio device opened: %s, %s (malgo/%s)", info.Name, advertised, formatName(native))

	return m, nil
}

// dataCallback is called by malgo to fill the device buffer.
// Miniaudio hands over a zeroed buffer.
func (m *Malgo) dataCallback(pOutput, _ []byte, frameCount uint32) {
	m.bufs[0] = Buffer{Channels: m.format.Channels, Data: pOutput}
	m.procs.render(m.bufs[:], TimeStamp{SampleTime: m.frames, HostTime: time.Now().UnixNano()})
	m.frames += uint64(frameCount)
}

func (m *Malgo) ID() string   { return m.info.ID }
func (m *Malgo) Name() string { return m.info.Name }

// OutputStreams returns the single interleaved stream of the device
func (m *Malgo) OutputStreams() ([]Stream, error) {
	return []Stream{{ID: 0, Name: m.info.Name, Format: m.format}}, nil
}

func (m *Malgo) CreateIOProc(proc IOProc) (ProcID, error) {
	return m.procs.create(proc)
}

func (m *Malgo) DestroyIOProc(id ProcID) error {
	if err := m.procs.destroy(id); err != nil {
		return err
	}
	if !m.procs.isRunning() {
		return m.stopDevice()
	}
	return nil
}

// Start makes id the running proc and starts the device clock
func (m *Malgo) Start(id ProcID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return ErrDeviceClosed
	}
	if err := m.procs.activate(id); err != nil {
		return err
	}
	if m.device.IsStarted() {
		return nil
	}
	if err := m.device.Start(); err != nil {
		_ = m.procs.deactivate(id)
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

// Stop halts the device clock. miniaudio returns once the data callback has exited.
func (m *Malgo) Stop(id ProcID) error {
	if err := m.procs.deactivate(id); err != nil {
		return err
	}
	return m.stopDevice()
}

func (m *Malgo) stopDevice() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil || !m.device.IsStarted() {
		return nil
	}
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

// Close stops and releases the device and its context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if m.device.IsStarted() {
			if err := m.device.Stop(); err != nil {
				log.Printf("Warning: device stop error: %v", err)
			}
		}
		m.device.Uninit()
		m.device = nil
	}
	if m.malgoCtx != nil {
		freeMalgoContext(m.malgoCtx)
		m.malgoCtx = nil
	}
	return nil
}

// listMalgo enumerates miniaudio playback devices
func listMalgo() ([]Info, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer freeMalgoContext(ctx)

	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate playback devices: %w", err)
	}
	return malgoInfos(devices), nil
}

func malgoInfos(devices []malgo.DeviceInfo) []Info {
	infos := make([]Info, len(devices))
	for i := range devices {
		infos[i] = Info{
			ID:      "malgo:" + devices[i].ID.String(),
			Name:    devices[i].Name(),
			Default: devices[i].IsDefault != 0,
		}
	}
	return infos
}

func freeMalgoContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	ctx.Free()
}

// malgoFormat maps a virtual format onto a miniaudio sample format.
// miniaudio's S24 is 3-byte packed, so 24-bit output is carried in an S32
// container with the sample aligned high.
func malgoFormat(f convert.Format) (malgo.FormatType, convert.Format, error) {
	switch f.Encoding() {
	case convert.Int16:
		return malgo.FormatS16, f, nil
	case convert.Int24:
		f.AlignedHigh = true
		return malgo.FormatS32, f, nil
	case convert.Int32:
		return malgo.FormatS32, f, nil
	case convert.Float32:
		return malgo.FormatF32, f, nil
	default:
		return malgo.FormatUnknown, f, fmt.Errorf("unsupported output format: %s", f)
	}
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	case malgo.FormatF32:
		return "F32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
