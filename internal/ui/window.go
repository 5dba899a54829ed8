// ABOUTME: Window events and sizes shared by terminal and headless windows
// ABOUTME: Control carries resize and quit signals out of the UI goroutine
package ui

// Size is a drawable area in character cells
type Size struct {
	Width  int
	Height int
}

// EventKind tags a window event
type EventKind int

const (
	EventNone EventKind = iota
	EventResize
	EventClose
)

// WindowEvent is the result of polling a window
type WindowEvent struct {
	Kind EventKind
	Size Size
}

// Control holds channels for communication from the UI to the render loop
type Control struct {
	Resize chan Size
	Quit   chan struct{}
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Resize: make(chan Size, 1),
		Quit:   make(chan struct{}, 1),
	}
}

// resize publishes the latest size, replacing one not yet polled
func (c *Control) resize(s Size) {
	for {
		select {
		case c.Resize <- s:
			return
		default:
		}
		select {
		case <-c.Resize:
		default:
		}
	}
}

// quit signals a close request once
func (c *Control) quit() {
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// Poll returns a pending close or resize without blocking
func (c *Control) Poll() WindowEvent {
	select {
	case <-c.Quit:
		return WindowEvent{Kind: EventClose}
	default:
	}

	select {
	case s := <-c.Resize:
		return WindowEvent{Kind: EventResize, Size: s}
	default:
		return WindowEvent{Kind: EventNone}
	}
}
