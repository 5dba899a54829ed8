// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling, on streamed blocks or on a
// whole decoded buffer.
//
// Example:
//
//	buf, err := resample.Buffer(buf, 48000)
package resample
