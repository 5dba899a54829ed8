//go:build portaudio

// ABOUTME: PortAudio output device
// ABOUTME: Non-blocking PortAudio stream driven by the stream callback
package output

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	stream      *portaudio.Stream
	callback    Callback
	faults      chan error
	completed   atomic.Bool
	underflows  atomic.Int64
	initialized bool
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Device {
	return &PortAudio{
		faults: make(chan error, 1),
	}
}

// Name returns the backend name
func (p *PortAudio) Name() string { return "portaudio" }

// Open initializes PortAudio and opens the default output stream
func (p *PortAudio) Open(format audio.Format, framesPerBlock int, cb Callback) error {
	if err := portaudio.Initialize(); err != nil {
		return &DeviceError{Backend: p.Name(), Op: "open", Err: fmt.Errorf("failed to initialize portaudio: %w", err)}
	}
	p.initialized = true
	p.callback = cb

	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), framesPerBlock, p.process)
	if err != nil {
		portaudio.Terminate()
		p.initialized = false
		return &DeviceError{Backend: p.Name(), Op: "open", Err: fmt.Errorf("failed to open stream: %w", err)}
	}

	p.stream = stream

	log.Printf("Audio output opened: %dHz, %d channels, %d frames/block (portaudio)",
		format.SampleRate, format.Channels, framesPerBlock)

	return nil
}

// process is the PortAudio stream callback
func (p *PortAudio) process(out []int16, timeInfo portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	if flags&portaudio.OutputUnderflow != 0 {
		p.underflows.Add(1)
	}

	if p.completed.Load() {
		clear(out)
		return
	}

	if p.callback(out, timeInfo.OutputBufferDacTime) == Complete {
		p.completed.Store(true)
	}
}

// Start begins playback
func (p *PortAudio) Start() error {
	if p.stream == nil {
		return &DeviceError{Backend: p.Name(), Op: "start", Err: errors.New("output not opened")}
	}
	if err := p.stream.Start(); err != nil {
		return &DeviceError{Backend: p.Name(), Op: "start", Err: err}
	}
	return nil
}

// Faults returns the mid-stream fault channel
func (p *PortAudio) Faults() <-chan error {
	return p.faults
}

// Close releases resources
func (p *PortAudio) Close() error {
	if n := p.underflows.Load(); n > 0 {
		log.Printf("PortAudio reported %d output underflows", n)
	}

	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			log.Printf("Warning: portaudio stop error: %v", err)
		}
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}

	if p.initialized {
		p.initialized = false
		return portaudio.Terminate()
	}
	return nil
}
