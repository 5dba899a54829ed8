// ABOUTME: Null audio output device
// ABOUTME: Pulls blocks at real-time pace and discards them (headless runs, tests)
package output

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
)

// nullPollInterval is how often the null device wakes up to render due blocks
const nullPollInterval = 2 * time.Millisecond

// Null consumes audio at the format's sample rate without producing sound
type Null struct {
	format         audio.Format
	framesPerBlock int
	callback       Callback
	faults         chan error
	stop           chan struct{}
	wg             sync.WaitGroup

	mu             sync.Mutex
	framesRendered uint64
}

// NewNull creates a null output
func NewNull() Device {
	return &Null{
		faults: make(chan error, 1),
	}
}

// Name returns the backend name
func (n *Null) Name() string { return "null" }

// Open records the stream parameters
func (n *Null) Open(format audio.Format, framesPerBlock int, cb Callback) error {
	if format.SampleRate <= 0 || format.Channels <= 0 || framesPerBlock <= 0 {
		return &DeviceError{Backend: n.Name(), Op: "open", Err: errors.New("invalid stream parameters")}
	}

	n.format = format
	n.framesPerBlock = framesPerBlock
	n.callback = cb

	log.Printf("Audio output opened: %dHz, %d channels, %d frames/block (null)",
		format.SampleRate, format.Channels, framesPerBlock)

	return nil
}

// Start launches the render goroutine
func (n *Null) Start() error {
	if n.callback == nil {
		return &DeviceError{Backend: n.Name(), Op: "start", Err: errors.New("device not open")}
	}

	n.stop = make(chan struct{})
	n.wg.Add(1)
	go n.run()

	return nil
}

// run renders every block that is due according to the wall clock
func (n *Null) run() {
	defer n.wg.Done()

	block := make([]int16, n.framesPerBlock*n.format.Channels)
	blockTime := blockDuration(uint64(n.framesPerBlock), n.format.SampleRate)

	ticker := time.NewTicker(nullPollInterval)
	defer ticker.Stop()

	start := time.Now()
	var blocks uint64

	for {
		select {
		case <-n.stop:
			return
		case now := <-ticker.C:
			due := uint64(now.Sub(start) / blockTime)
			for ; blocks <= due; blocks++ {
				deviceTime := blockDuration(blocks*uint64(n.framesPerBlock), n.format.SampleRate)
				status := n.callback(block, deviceTime)

				n.mu.Lock()
				n.framesRendered += uint64(n.framesPerBlock)
				n.mu.Unlock()

				if status == Complete {
					return
				}
			}
		}
	}
}

// FramesRendered returns how many frames have been pulled so far
func (n *Null) FramesRendered() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.framesRendered
}

// Faults returns the mid-stream fault channel
func (n *Null) Faults() <-chan error {
	return n.faults
}

// Close stops the render goroutine
func (n *Null) Close() error {
	if n.stop != nil {
		close(n.stop)
		n.wg.Wait()
		n.stop = nil
	}
	return nil
}
