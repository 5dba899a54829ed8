// ABOUTME: Audio output device interface definition
// ABOUTME: Common callback-driven interface for low-latency playback backends
package output

import (
	"fmt"
	"time"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
)

// Status is returned by a Callback to tell the device whether to keep pulling
type Status int

const (
	// Continue asks for more blocks
	Continue Status = iota
	// Complete means the stream has no more samples
	Complete
)

// Callback fills out (framesPerBlock x channels samples) with the next block.
// deviceTime is the device's stream clock when the block starts playing.
// It runs on the device's real-time thread and must not block or allocate.
type Callback func(out []int16, deviceTime time.Duration) Status

// Device is a low-latency output device that pulls samples through a Callback
type Device interface {
	// Open acquires the device for the given format
	Open(format audio.Format, framesPerBlock int, cb Callback) error

	// Start begins invoking the callback
	Start() error

	// Faults reports mid-stream device errors (best effort)
	Faults() <-chan error

	// Close stops the device and releases it
	Close() error

	// Name identifies the backend in logs
	Name() string
}

// DeviceError reports a device that could not be opened or started
type DeviceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s device %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Backends lists the names accepted by New
var Backends = []string{"malgo", "oto", "portaudio", "null"}

// New creates a device for the named backend
func New(backend string) (Device, error) {
	switch backend {
	case "", "malgo":
		return NewMalgo(), nil
	case "oto":
		return NewOto(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "null":
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("unknown output backend %q (available: %v)", backend, Backends)
	}
}

// blockDuration converts a frame count to stream time
func blockDuration(frames uint64, sampleRate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// putInt16LE encodes samples into out as 16-bit little-endian bytes
func putInt16LE(out []byte, samples []int16) {
	for i, sample := range samples {
		out[i*2] = byte(sample)
		out[i*2+1] = byte(uint16(sample) >> 8)
	}
}

// reportFault delivers err without blocking; only the first fault is kept
func reportFault(faults chan error, err error) {
	select {
	case faults <- err:
	default:
	}
}
