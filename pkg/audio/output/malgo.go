// ABOUTME: Malgo-based audio output device
// ABOUTME: Uses miniaudio via malgo; the data callback pulls blocks from the stream
package output

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format
	callback Callback
	faults   chan error

	// Owned by the miniaudio thread
	scratch        []int16
	framesRendered uint64

	completed atomic.Bool
	closing   atomic.Bool
	mu        sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo() Device {
	return &Malgo{
		faults: make(chan error, 1),
	}
}

// Name returns the backend name
func (m *Malgo) Name() string { return "malgo" }

// Open initializes the miniaudio context and playback device
func (m *Malgo) Open(format audio.Format, framesPerBlock int, cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return &DeviceError{Backend: m.Name(), Op: "open", Err: errors.New("device already open")}
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return &DeviceError{Backend: m.Name(), Op: "open", Err: fmt.Errorf("failed to initialize malgo context: %w", err)}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(framesPerBlock)
	deviceConfig.Alsa.NoMMap = 1

	// miniaudio may hand out larger periods than requested; the callback
	// renders those in chunks of this block
	m.scratch = make([]int16, framesPerBlock*format.Channels*8)
	m.format = format
	m.callback = cb

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
		Stop: m.stopCallback,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return &DeviceError{Backend: m.Name(), Op: "open", Err: fmt.Errorf("failed to initialize playback device: %w", err)}
	}

	m.malgoCtx = ctx
	m.device = device

	log.Printf("Audio output opened: %dHz, %d channels, %d frames/block (malgo/S16)",
		format.SampleRate, format.Channels, framesPerBlock)

	return nil
}

// Start begins playback
func (m *Malgo) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return &DeviceError{Backend: m.Name(), Op: "start", Err: errors.New("device not open")}
	}
	if err := m.device.Start(); err != nil {
		return &DeviceError{Backend: m.Name(), Op: "start", Err: err}
	}
	return nil
}

// Faults returns the mid-stream fault channel
func (m *Malgo) Faults() <-chan error {
	return m.faults
}

// dataCallback is called by malgo to fill the audio output buffer. Periods
// larger than the scratch block are rendered in scratch-sized chunks.
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	channels := m.format.Channels
	chunkFrames := len(m.scratch) / channels

	for remaining := int(frameCount); remaining > 0; {
		if m.completed.Load() {
			clear(pOutput)
			return
		}

		frames := min(remaining, chunkFrames)
		block := m.scratch[:frames*channels]

		deviceTime := blockDuration(m.framesRendered, m.format.SampleRate)
		status := m.callback(block, deviceTime)
		m.framesRendered += uint64(frames)

		putInt16LE(pOutput, block)
		pOutput = pOutput[len(block)*2:]
		remaining -= frames

		if status == Complete {
			m.completed.Store(true)
		}
	}
}

// stopCallback fires whenever miniaudio stops the device
func (m *Malgo) stopCallback() {
	if m.closing.Load() || m.completed.Load() {
		return
	}
	reportFault(m.faults, errors.New("malgo device stopped unexpectedly"))
}

// Close stops and releases the device and context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closing.Store(true)

	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	return nil
}
