//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Device {
	return &PortAudio{}
}

// Name returns the backend name
func (p *PortAudio) Name() string { return "portaudio" }

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(format audio.Format, framesPerBlock int, cb Callback) error {
	return &DeviceError{Backend: p.Name(), Op: "open", Err: errPortAudioDisabled}
}

// Start always fails without the portaudio build tag
func (p *PortAudio) Start() error {
	return &DeviceError{Backend: p.Name(), Op: "start", Err: errPortAudioDisabled}
}

// Faults never delivers
func (p *PortAudio) Faults() <-chan error {
	return nil
}

// Close is a no-op
func (p *PortAudio) Close() error {
	return nil
}
