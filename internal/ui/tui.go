// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program as a window and frame renderer
package ui

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/resonate-viz/pkg/visual"
)

// Terminal draws frames into an alt-screen bubbletea program
type Terminal struct {
	control *Control
	program *tea.Program
	frames  chan frameMsg
	done    chan struct{}
	err     error
}

// NewTerminal creates a terminal window for track
func NewTerminal(track TrackInfo) *Terminal {
	control := NewControl()
	return &Terminal{
		control: control,
		program: tea.NewProgram(NewModel(control, track), tea.WithAltScreen()),
		frames:  make(chan frameMsg, 2),
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background
func (t *Terminal) Start() {
	go func() {
		defer close(t.done)
		if _, err := t.program.Run(); err != nil {
			log.Printf("TUI error: %v", err)
			t.err = err
		}
	}()

	// Forward frames without blocking the render loop
	go func() {
		for {
			select {
			case msg := <-t.frames:
				t.program.Send(msg)
			case <-t.done:
				return
			}
		}
	}()
}

// Poll reports resizes and quit requests; a finished program counts as closed
func (t *Terminal) Poll() WindowEvent {
	select {
	case <-t.done:
		return WindowEvent{Kind: EventClose}
	default:
	}
	return t.control.Poll()
}

// Render rasterizes frame into size and hands it to the program
func (t *Terminal) Render(frame visual.Frame, size Size) error {
	msg := frameMsg{
		canvas:    Rasterize(frame, size.Width, size.Height),
		elapsed:   frame.Elapsed,
		frequency: frame.Frequency,
		level:     frame.Level,
		slice:     frame.Slice,
		eye:       [3]float32{frame.Camera.Eye.X(), frame.Camera.Eye.Y(), frame.Camera.Eye.Z()},
	}

	select {
	case t.frames <- msg:
	default:
		// Don't block if the program is behind
	}
	return nil
}

// Close stops the program and waits for it to restore the terminal
func (t *Terminal) Close() error {
	t.program.Quit()
	<-t.done
	return t.err
}
