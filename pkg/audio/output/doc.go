// ABOUTME: Audio output device package
// ABOUTME: Provides the Device interface and malgo, oto, PortAudio and null backends
// Package output provides audio devices that pull samples from a render proc.
//
// A Device exposes its output streams and lets callers register an IOProc.
// Once started the device calls IOProc.Render from its real-time thread
// with a BufferList to fill.
//
// Backends: malgo (miniaudio, default), oto, PortAudio (build with
// -tags portaudio) and a software-clocked null device.
//
// Example:
//
//	dev, err := output.Open(output.Config{Backend: "malgo", SampleRate: 48000, Channels: 2, Format: "f32"})
//	id, err := dev.CreateIOProc(proc)
//	err = dev.Start(id)
package output
