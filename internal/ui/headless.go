// ABOUTME: Headless window and renderer for -no-tui runs and tests
// ABOUTME: Counts frames and logs the visual state once per second of frames
package ui

import (
	"log"

	"github.com/Resonate-Protocol/resonate-viz/pkg/visual"
)

// Headless is a window without a display
type Headless struct {
	control  *Control
	logEvery int

	frames int
	last   visual.Frame
}

// NewHeadless creates a headless window that reports size once and logs
// every logEvery frames (0 disables logging)
func NewHeadless(size Size, logEvery int) *Headless {
	h := &Headless{
		control:  NewControl(),
		logEvery: logEvery,
	}
	h.control.resize(size)
	return h
}

// Poll returns pending events
func (h *Headless) Poll() WindowEvent {
	return h.control.Poll()
}

// Render records the frame
func (h *Headless) Render(frame visual.Frame, size Size) error {
	h.frames++
	h.last = frame

	if h.logEvery > 0 && h.frames%h.logEvery == 0 {
		log.Printf("Frame %d: t=%.2fs slice %d peak %.1f Hz level %.3f",
			h.frames, frame.Elapsed, frame.Slice, frame.Frequency, frame.Level)
	}
	return nil
}

// RequestClose makes the next Poll report a close; safe from any goroutine
func (h *Headless) RequestClose() {
	h.control.quit()
}

// Frames returns the number of frames rendered
func (h *Headless) Frames() int {
	return h.frames
}

// Last returns the most recent frame
func (h *Headless) Last() visual.Frame {
	return h.last
}
