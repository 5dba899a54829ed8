// ABOUTME: Audio streamer feeding a preloaded buffer to an output device
// ABOUTME: Runs the real-time callback, publishes playback time and completion
package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/output"
	"github.com/google/uuid"
)

// Config holds streamer settings
type Config struct {
	// FramesPerBlock is the device block size requested from the backend
	FramesPerBlock int

	// EventBuffer is the capacity of the lossy telemetry channel
	EventBuffer int
}

// DefaultConfig returns the low-latency defaults (64-frame blocks)
func DefaultConfig() Config {
	return Config{
		FramesPerBlock: 64,
		EventBuffer:    256,
	}
}

// Result describes how a playback session ended
type Result struct {
	SessionID string

	// Abnormal is set when the device failed mid-stream
	Abnormal bool
	// Interrupted is set when playback was stopped before the end
	Interrupted bool
	Err         error

	// Elapsed is the final playback clock value in seconds
	Elapsed       float64
	DroppedEvents int64
}

// Streamer owns an output device for one playback session
type Streamer struct {
	id  string
	buf audio.Buffer
	dev output.Device
	cfg Config

	state State
	clock Clock
	rt    renderContext

	events   chan Event
	complete chan struct{}
	closed   chan struct{}
	done     chan Result
	final    Result
	dropped  atomic.Int64
}

// renderContext is the state carried across callback invocations.
// Only the device's callback thread touches it after Start.
type renderContext struct {
	cursor  *audio.Cursor
	started bool
	origin  time.Duration
}

// New creates a streamer for buf. The device is not touched until Start.
func New(buf audio.Buffer, dev output.Device, cfg Config) *Streamer {
	if cfg.FramesPerBlock <= 0 {
		cfg.FramesPerBlock = DefaultConfig().FramesPerBlock
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}

	return &Streamer{
		id:       uuid.New().String()[:8],
		buf:      buf,
		dev:      dev,
		cfg:      cfg,
		rt:       renderContext{cursor: audio.NewCursor(buf.Samples)},
		events:   make(chan Event, cfg.EventBuffer),
		complete: make(chan struct{}, 1),
		closed:   make(chan struct{}),
		done:     make(chan Result, 1),
	}
}

// Start opens and starts the device (Idle -> Running).
// A device that cannot be opened or started is returned as an error and the
// streamer moves straight to Closed.
func (s *Streamer) Start() error {
	if s.State() != StateIdle {
		return fmt.Errorf("streamer already started (state %s)", s.State())
	}
	if err := s.buf.Validate(); err != nil {
		s.finish(Result{Abnormal: true, Err: err})
		return err
	}

	if err := s.dev.Open(s.buf.Format, s.cfg.FramesPerBlock, s.render); err != nil {
		s.finish(Result{Abnormal: true, Err: err})
		return err
	}

	s.state.store(StateRunning)

	if err := s.dev.Start(); err != nil {
		if closeErr := s.dev.Close(); closeErr != nil {
			log.Printf("[%s] Error releasing device after failed start: %v", s.id, closeErr)
		}
		s.finish(Result{Abnormal: true, Err: err})
		return err
	}

	log.Printf("[%s] Playback started on %s: %d samples, %dHz, %d channels (%v)",
		s.id, s.dev.Name(), len(s.buf.Samples), s.buf.Format.SampleRate,
		s.buf.Format.Channels, s.buf.Duration())

	return nil
}

// render is the real-time callback. It never blocks and never allocates.
func (s *Streamer) render(out []int16, deviceTime time.Duration) output.Status {
	rc := &s.rt
	if !rc.started {
		rc.origin = deviceTime
		rc.started = true
	}

	elapsed := s.clock.advance((deviceTime - rc.origin).Seconds())
	s.publish(Event{Kind: EventTime, Elapsed: elapsed})

	if _, exhausted := rc.cursor.Fill(out); !exhausted {
		return output.Continue
	}

	if s.state.compareAndSwap(StateRunning, StateDraining) {
		select {
		case s.complete <- struct{}{}:
		default:
		}
		s.publish(Event{Kind: EventCompleted, Elapsed: elapsed})
	}

	return output.Complete
}

// publish is a best-effort send; a full channel drops the event
func (s *Streamer) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Wait blocks until the stream completes, the device faults or ctx ends,
// then releases the device (-> Closed) and reports the result.
func (s *Streamer) Wait(ctx context.Context) Result {
	var res Result

	select {
	case <-s.closed:
		return s.final
	case <-s.complete:
	case err := <-s.dev.Faults():
		log.Printf("[%s] Device fault during playback: %v", s.id, err)
		res.Abnormal = true
		res.Err = err
	case <-ctx.Done():
		log.Printf("[%s] Playback interrupted at %.3fs", s.id, s.clock.Seconds())
		res.Interrupted = true
	}

	if err := s.dev.Close(); err != nil {
		log.Printf("[%s] Error closing device: %v", s.id, err)
	}

	res = s.finish(res)

	log.Printf("[%s] Playback closed after %.3fs (abnormal=%v, interrupted=%v, dropped events=%d)",
		s.id, res.Elapsed, res.Abnormal, res.Interrupted, res.DroppedEvents)

	return res
}

// finish enters Closed and publishes the result exactly once
func (s *Streamer) finish(res Result) Result {
	if s.state.swap(StateClosed) == StateClosed {
		return res
	}

	res.SessionID = s.id
	res.Elapsed = s.clock.Seconds()
	res.DroppedEvents = s.dropped.Load()
	s.final = res

	close(s.closed)
	s.done <- res

	return res
}

// ID returns the session id used in logs
func (s *Streamer) ID() string {
	return s.id
}

// State returns the current stream state
func (s *Streamer) State() StreamState {
	return s.state.load()
}

// Elapsed returns the playback clock in seconds
func (s *Streamer) Elapsed() float64 {
	return s.clock.Seconds()
}

// Events returns the lossy telemetry channel
func (s *Streamer) Events() <-chan Event {
	return s.events
}

// Closed is closed when the stream enters Closed
func (s *Streamer) Closed() <-chan struct{} {
	return s.closed
}

// Done delivers the session result once
func (s *Streamer) Done() <-chan Result {
	return s.done
}

// Dropped returns how many telemetry events were lost
func (s *Streamer) Dropped() int64 {
	return s.dropped.Load()
}

// IsDeviceError reports whether err came from the output device
func IsDeviceError(err error) bool {
	var devErr *output.DeviceError
	return errors.As(err, &devErr)
}
