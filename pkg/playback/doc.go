// ABOUTME: Direct device playback package
// ABOUTME: Plays a decoded sample source through a device render callback
// Package playback plays a fully decoded audio.Source straight through an
// output.Device, with no mixer or format converter in between.
//
// A Session registers a render proc with the device. Each device callback
// converts the next run of source samples into the device's native
// representation and advances a cursor. When the cursor reaches the end of
// the source the OnDepleted callback fires exactly once, on the render
// thread. The source is never refilled.
//
// Example:
//
//	s, err := playback.New(dev, playback.Options{OnDepleted: func() { close(done) }})
//	err = s.InstallSource(src)
//	err = s.Start()
//	<-done
//	err = s.Close()
package playback
