// ABOUTME: Playback package streaming decoded audio to an output device
// ABOUTME: Exposes the streamer lifecycle, playback clock and telemetry events
// Package playback plays a decoded audio.Buffer through an output.Device.
//
// A Streamer moves through Idle, Running, Draining and Closed. The device
// callback copies one block per invocation, advances the playback clock and
// emits best-effort Events. Lifecycle is reported through Closed() and
// Done(), which are never lossy.
//
// Example:
//
//	s := playback.New(buf, dev, playback.DefaultConfig())
//	if err := s.Start(); err != nil {
//	    return err
//	}
//	res := s.Wait(ctx)
package playback
