// ABOUTME: Audio type definitions
// ABOUTME: Defines the decoded PCM buffer, its format and sample conversions
package audio

import (
	"fmt"
	"time"
)

const (
	// 16-bit audio range constants
	Max16Bit = 32767  // 2^15 - 1
	Min16Bit = -32768 // -2^15
)

// Format describes a decoded audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int // always 16 after decoding; SourceBitDepth keeps the original
	// SourceBitDepth is the bit depth found in the file before conversion
	SourceBitDepth int
}

// Buffer holds a fully decoded, interleaved 16-bit PCM signal.
// A Buffer is never mutated after it has been loaded.
type Buffer struct {
	Samples []int16
	Format  Format
}

// Validate checks that the buffer can be played and analyzed
func (b Buffer) Validate() error {
	if b.Format.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", b.Format.SampleRate)
	}
	if b.Format.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", b.Format.Channels)
	}
	if len(b.Samples)%b.Format.Channels != 0 {
		return fmt.Errorf("sample count %d is not a multiple of %d channels",
			len(b.Samples), b.Format.Channels)
	}
	return nil
}

// Frames returns the number of sample frames (samples per channel)
func (b Buffer) Frames() int {
	if b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback length of the buffer
func (b Buffer) Duration() time.Duration {
	if b.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// Mono averages all channels of each frame into a single normalized signal.
// For mono buffers the result is the sample sequence itself, scaled to [-1, 1).
func (b Buffer) Mono() []float64 {
	channels := b.Format.Channels
	frames := b.Frames()
	out := make([]float64, frames)

	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += SampleToFloat(b.Samples[i*channels+ch])
		}
		out[i] = sum / float64(channels)
	}

	return out
}

// SampleToFloat converts an int16 sample to the [-1, 1) range
func SampleToFloat(sample int16) float64 {
	return float64(sample) / 32768.0
}

// SampleFromFloat32 converts a [-1, 1] float sample to int16 with clipping
func SampleFromFloat32(sample float32) int16 {
	scaled := float64(sample) * 32768.0
	if scaled > Max16Bit {
		return Max16Bit
	}
	if scaled < Min16Bit {
		return Min16Bit
	}
	return int16(scaled)
}

// SampleFromInt converts a signed integer sample of any bit depth to int16
func SampleFromInt(sample int, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(sample)
	case bitDepth > 16:
		// Drop the low bits
		return int16(sample >> (bitDepth - 16))
	case bitDepth > 0:
		// 8-bit and friends: shift into the upper bits
		return int16(sample << (16 - bitDepth))
	default:
		return 0
	}
}
