// ABOUTME: Inert output device for tests that must not touch audio hardware
// ABOUTME: Records the callback and fails on demand without rendering anything
package audiotest

import (
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/output"
)

// Device is an output.Device that never invokes its callback
type Device struct {
	OpenErr error
	faults  chan error
	closed  chan struct{}
}

// NewDevice creates an inert device
func NewDevice() *Device {
	return &Device{
		faults: make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (d *Device) Name() string { return "test" }

func (d *Device) Open(format audio.Format, framesPerBlock int, cb output.Callback) error {
	return d.OpenErr
}

func (d *Device) Start() error { return nil }

func (d *Device) Faults() <-chan error { return d.faults }

// Fail reports a mid-stream fault
func (d *Device) Fail(err error) {
	d.faults <- err
}

func (d *Device) Close() error {
	close(d.closed)
	return nil
}

// Closed is closed once the device is released
func (d *Device) Closed() <-chan struct{} {
	return d.closed
}
