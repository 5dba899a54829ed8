// ABOUTME: Playback-time synchronization package
// ABOUTME: Aligns precomputed spectral slices with the live playback clock
// Package sync emits the spectral peak of the slice that is currently
// audible.
//
// The Synchronizer waits for the first playback event, then follows wall
// clock time from that origin on a 1ms tick. Device timestamps are drained
// for diagnostics and fed to a DriftEstimator.
//
// Example:
//
//	s := sync.New(result, streamer.Events(), streamer.Closed(), sync.DefaultConfig())
//	go s.Run(ctx)
//	peak := <-s.Peaks()
package sync
