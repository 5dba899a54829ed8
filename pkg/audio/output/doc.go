// ABOUTME: Audio output package for low-latency playback devices
// ABOUTME: Provides the callback-driven Device interface and its backends
// Package output provides low-latency audio playback devices.
//
// Devices pull samples through a Callback invoked on the backend's
// real-time thread. Backends: malgo (default), oto, portaudio (build with
// -tags portaudio) and null (paced by the wall clock, discards audio).
//
// Example:
//
//	dev, _ := output.New("malgo")
//	err := dev.Open(format, 64, func(out []int16, t time.Duration) output.Status {
//	    n, done := cursor.Fill(out)
//	    if done {
//	        return output.Complete
//	    }
//	    return output.Continue
//	})
//	err = dev.Start()
package output
