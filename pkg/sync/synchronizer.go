// ABOUTME: Playback-time synchronizer emitting the current spectral peak
// ABOUTME: Follows wall-clock time from the first playback event and advances through slices
package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Resonate-Protocol/resonate-viz/pkg/analysis"
	"github.com/Resonate-Protocol/resonate-viz/pkg/playback"
)

// Policy decides how many slices one tick may advance
type Policy int

const (
	// PolicyCatchUp jumps straight to the slice containing the current time
	PolicyCatchUp Policy = iota
	// PolicyStep advances at most one slice per tick
	PolicyStep
)

func (p Policy) String() string {
	switch p {
	case PolicyCatchUp:
		return "catchup"
	case PolicyStep:
		return "step"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a flag value into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "catchup", "":
		return PolicyCatchUp, nil
	case "step":
		return PolicyStep, nil
	default:
		return 0, fmt.Errorf("unknown sync policy %q (want catchup or step)", s)
	}
}

// Peak is the spectral peak of the slice that is currently playing
type Peak struct {
	Index     int
	Frequency float64
	// Level is the slice RMS relative to full scale
	Level float64
	// At is the wall-clock playback time the peak was emitted at
	At time.Duration
}

// Config holds synchronizer settings
type Config struct {
	// SliceDuration overrides the analysis slice duration when non-zero
	SliceDuration time.Duration
	Tick          time.Duration
	Policy        Policy
	Clock         clock.Clock
	PeakBuffer    int
}

// DefaultConfig returns a 1ms tick with catch-up policy
func DefaultConfig() Config {
	return Config{
		Tick:       time.Millisecond,
		Policy:     PolicyCatchUp,
		PeakBuffer: 64,
	}
}

// Stats summarizes a synchronizer run
type Stats struct {
	Emitted      int
	Skipped      int
	DroppedPeaks int
	// Remaining counts slices never emitted
	Remaining int
	Exhausted bool

	Events        int
	NonMonotonic  int
	Completed     bool
	DeviceElapsed float64
	Drift         time.Duration
	Quality       Quality
}

// Synchronizer maps elapsed playback time onto the analysis slices
type Synchronizer struct {
	result *analysis.Result
	events <-chan playback.Event
	closed <-chan struct{}
	cfg    Config
	clk    clock.Clock

	peaks chan Peak
	drift *DriftEstimator

	next  int
	stats Stats
}

// New creates a synchronizer over result fed by a streamer's events and
// Closed signal
func New(result *analysis.Result, events <-chan playback.Event, closed <-chan struct{}, cfg Config) *Synchronizer {
	defaults := DefaultConfig()
	if cfg.SliceDuration <= 0 {
		cfg.SliceDuration = result.SliceDuration
	}
	if cfg.Tick <= 0 {
		cfg.Tick = defaults.Tick
	}
	if cfg.PeakBuffer <= 0 {
		cfg.PeakBuffer = defaults.PeakBuffer
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Synchronizer{
		result: result,
		events: events,
		closed: closed,
		cfg:    cfg,
		clk:    clk,
		peaks:  make(chan Peak, cfg.PeakBuffer),
		drift:  NewDriftEstimator(),
	}
}

// Peaks returns the lossy channel of emitted peaks
func (s *Synchronizer) Peaks() <-chan Peak {
	return s.peaks
}

// Advance decides which slice to emit at elapsed given the next unconsumed
// slice index and the sequence length. The returned index never exceeds
// elapsed / slice.
func Advance(p Policy, next, length int, elapsed, slice time.Duration) (index, skipped int, ok bool) {
	if next >= length || elapsed < 0 || slice <= 0 {
		return 0, 0, false
	}

	switch p {
	case PolicyStep:
		if elapsed < time.Duration(next)*slice {
			return 0, 0, false
		}
		return next, 0, true
	default:
		target := int(elapsed / slice)
		if target < next {
			return 0, 0, false
		}
		if target >= length {
			target = length - 1
		}
		return target, target - next, true
	}
}

// Run blocks until the sequence is exhausted, the stream closes or ctx ends
func (s *Synchronizer) Run(ctx context.Context) Stats {
	length := s.result.Len()
	log.Printf("Sync: waiting for playback (%d slices of %v, policy %s)",
		length, s.cfg.SliceDuration, s.cfg.Policy)

	var first playback.Event
	select {
	case first = <-s.events:
	case <-s.closed:
		log.Printf("Sync: stream closed before first playback event")
		return s.finish()
	case <-ctx.Done():
		return s.finish()
	}

	origin := s.clk.Now().Add(-secondsToDuration(first.Elapsed))
	s.observe(first, secondsToDuration(first.Elapsed))

	ticker := s.clk.Ticker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		elapsed := s.clk.Since(origin)
		s.drain(elapsed)

		if s.tick(elapsed, length) {
			log.Printf("Sync: peak sequence exhausted at %.3fs", elapsed.Seconds())
			if !s.stats.Completed {
				log.Printf("Sync: underrun, peaks exhausted before playback ended (device at %.3fs)",
					s.stats.DeviceElapsed)
			}
			return s.finish()
		}

		select {
		case <-s.closed:
			s.drain(s.clk.Since(origin))
			if remaining := length - s.next; remaining > 0 {
				log.Printf("Sync: underrun, stream closed with %d of %d slices unconsumed", remaining, length)
			}
			return s.finish()
		case <-ctx.Done():
			return s.finish()
		case <-ticker.C:
		}
	}
}

// tick emits the slice due at elapsed and reports exhaustion
func (s *Synchronizer) tick(elapsed time.Duration, length int) bool {
	if index, skipped, ok := Advance(s.cfg.Policy, s.next, length, elapsed, s.cfg.SliceDuration); ok {
		s.emit(index, elapsed)
		s.stats.Skipped += skipped
		if skipped > 0 {
			log.Printf("Sync: skipped %d slices catching up at %.3fs", skipped, elapsed.Seconds())
		}
		s.next = index + 1
	}

	return s.next >= length && elapsed >= time.Duration(length)*s.cfg.SliceDuration
}

func (s *Synchronizer) emit(index int, elapsed time.Duration) {
	peak := Peak{
		Index:     index,
		Frequency: s.result.Peaks[index],
		At:        elapsed,
	}
	if index < len(s.result.Levels) {
		peak.Level = s.result.Levels[index]
	}

	s.stats.Emitted++
	log.Printf("Sync: slice %d at %.3fs peak %.1f Hz level %.3f",
		index, elapsed.Seconds(), peak.Frequency, peak.Level)

	select {
	case s.peaks <- peak:
	default:
		s.stats.DroppedPeaks++
	}
}

// drain consumes pending playback events without blocking
func (s *Synchronizer) drain(elapsed time.Duration) {
	for {
		select {
		case ev := <-s.events:
			s.observe(ev, elapsed)
		default:
			return
		}
	}
}

func (s *Synchronizer) observe(ev playback.Event, elapsed time.Duration) {
	s.stats.Events++

	if ev.Kind == playback.EventCompleted {
		s.stats.Completed = true
		log.Printf("Sync: playback reported completion at %.3fs (wall %.3fs)",
			ev.Elapsed, elapsed.Seconds())
	}

	if ev.Elapsed < s.stats.DeviceElapsed {
		s.stats.NonMonotonic++
		return
	}
	s.stats.DeviceElapsed = ev.Elapsed
	s.drift.Observe(s.clk.Now(), elapsed.Seconds(), ev.Elapsed)
}

func (s *Synchronizer) finish() Stats {
	s.stats.Remaining = s.result.Len() - s.next
	s.stats.Exhausted = s.stats.Remaining == 0
	s.stats.Drift = s.drift.Offset()
	s.stats.Quality = s.drift.CheckQuality(s.clk.Now())

	log.Printf("Sync: stopped after %d peaks (%d skipped, %d dropped, %d events, drift %v, quality %s)",
		s.stats.Emitted, s.stats.Skipped, s.stats.DroppedPeaks, s.stats.Events,
		s.stats.Drift, s.stats.Quality)

	return s.stats
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
