// ABOUTME: Stream state machine, playback clock and telemetry events
// ABOUTME: Lock-free types shared between the callback thread and observers
package playback

import (
	"math"
	"sync/atomic"
)

// StreamState is the lifecycle stage of a playback session
type StreamState int32

const (
	StateIdle StreamState = iota
	StateRunning
	StateDraining
	StateClosed
)

func (s StreamState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// State is an atomically updated StreamState
type State struct {
	v atomic.Int32
}

func (s *State) load() StreamState {
	return StreamState(s.v.Load())
}

func (s *State) store(st StreamState) {
	s.v.Store(int32(st))
}

func (s *State) swap(st StreamState) StreamState {
	return StreamState(s.v.Swap(int32(st)))
}

func (s *State) compareAndSwap(old, new StreamState) bool {
	return s.v.CompareAndSwap(int32(old), int32(new))
}

// Clock is the playback clock: seconds since the first rendered block.
// It has a single writer (the callback) and never decreases.
type Clock struct {
	bits atomic.Uint64
}

// Seconds returns the current clock value
func (c *Clock) Seconds() float64 {
	return math.Float64frombits(c.bits.Load())
}

// advance moves the clock to t unless t is behind it, returning the new value
func (c *Clock) advance(t float64) float64 {
	cur := c.Seconds()
	if t <= cur || math.IsNaN(t) {
		return cur
	}
	c.bits.Store(math.Float64bits(t))
	return t
}

// EventKind tags a telemetry event
type EventKind int

const (
	// EventTime carries the playback clock at callback entry
	EventTime EventKind = iota
	// EventCompleted is sent once when the buffer is exhausted
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventTime:
		return "time"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is a diagnostic message from the callback. Delivery is best effort.
type Event struct {
	Kind    EventKind
	Elapsed float64
}
