// ABOUTME: Oto-based audio output device
// ABOUTME: The oto player pulls blocks from the stream callback through an io.Reader
package output

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process
var (
	otoOnce   sync.Once
	otoCtx    *oto.Context
	otoFormat audio.Format
	otoErr    error
)

// Oto output implementation using oto library
type Oto struct {
	player *oto.Player
	reader *blockReader
	faults chan error
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewOto creates a new Oto output
func NewOto() Device {
	return &Oto{
		faults: make(chan error, 1),
	}
}

// Name returns the backend name
func (o *Oto) Name() string { return "oto" }

// Open initializes the oto context and a player fed by the callback
func (o *Oto) Open(format audio.Format, framesPerBlock int, cb Callback) error {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   blockDuration(uint64(framesPerBlock)*4, format.SampleRate),
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		otoFormat = format
	})

	if otoErr != nil {
		return &DeviceError{Backend: o.Name(), Op: "open", Err: otoErr}
	}

	// oto can't be reinitialized with a different format
	if otoFormat.SampleRate != format.SampleRate || otoFormat.Channels != format.Channels {
		return &DeviceError{Backend: o.Name(), Op: "open", Err: fmt.Errorf(
			"oto context already running at %dHz/%dch, cannot switch to %dHz/%dch",
			otoFormat.SampleRate, otoFormat.Channels, format.SampleRate, format.Channels)}
	}

	if err := otoCtx.Resume(); err != nil {
		return &DeviceError{Backend: o.Name(), Op: "open", Err: err}
	}

	o.reader = newBlockReader(format, framesPerBlock, cb)
	o.player = otoCtx.NewPlayer(o.reader)
	o.player.SetBufferSize(framesPerBlock * format.Channels * 2 * 4)
	o.stop = make(chan struct{})

	log.Printf("Audio output opened: %dHz, %d channels, %d frames/block (oto)",
		format.SampleRate, format.Channels, framesPerBlock)

	return nil
}

// Start begins playback and watches the player for errors
func (o *Oto) Start() error {
	if o.player == nil {
		return &DeviceError{Backend: o.Name(), Op: "start", Err: errors.New("device not open")}
	}

	o.player.Play()

	o.wg.Add(1)
	go o.watch()

	return nil
}

// watch polls the player for asynchronous errors
func (o *Oto) watch() {
	defer o.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
			if err := o.player.Err(); err != nil {
				reportFault(o.faults, fmt.Errorf("oto player error: %w", err))
				return
			}
		}
	}
}

// Faults returns the mid-stream fault channel
func (o *Oto) Faults() <-chan error {
	return o.faults
}

// Close stops the player and suspends the shared context
func (o *Oto) Close() error {
	if o.stop != nil {
		close(o.stop)
		o.wg.Wait()
		o.stop = nil
	}

	if o.player != nil {
		o.player.Pause()
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}

	if otoCtx != nil {
		if err := otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}

	return nil
}

// blockReader adapts a Callback to the io.Reader oto pulls from.
// Reads happen on oto's mixing goroutine, one block at a time.
type blockReader struct {
	callback       Callback
	sampleRate     int
	channels       int
	scratch        []int16
	framesRendered uint64
	done           bool
}

func newBlockReader(format audio.Format, framesPerBlock int, cb Callback) *blockReader {
	return &blockReader{
		callback:   cb,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		scratch:    make([]int16, framesPerBlock*format.Channels),
	}
}

func (r *blockReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}

	n := len(p) / 2
	n -= n % r.channels
	if n > len(r.scratch) {
		n = len(r.scratch)
	}
	if n == 0 {
		return 0, nil
	}

	block := r.scratch[:n]
	deviceTime := blockDuration(r.framesRendered, r.sampleRate)
	status := r.callback(block, deviceTime)
	r.framesRendered += uint64(n / r.channels)

	putInt16LE(p, block)

	if status == Complete {
		r.done = true
	}

	return n * 2, nil
}
