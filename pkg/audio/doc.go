// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer, Cursor and sample conversion functions
// Package audio provides the fundamental PCM types used by the visualizer.
//
//   - Format: sample rate, channel count and bit depth of a decoded stream
//   - Buffer: a fully decoded, immutable, interleaved 16-bit signal
//   - Cursor: a block-wise read position owned by the playback callback
//
// Example:
//
//	buf := audio.Buffer{Samples: samples, Format: audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}}
//	cursor := audio.NewCursor(buf.Samples)
//	n, exhausted := cursor.Fill(block)
package audio
