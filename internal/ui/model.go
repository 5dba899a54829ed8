// ABOUTME: Bubbletea model for the visualizer TUI
// ABOUTME: Defines display state and update logic for frames, resizes and keys
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chromeLines is the number of rows used around the canvas
const chromeLines = 4

// TrackInfo describes what is playing
type TrackInfo struct {
	Path       string
	SampleRate int
	Channels   int
	Duration   time.Duration
	Backend    string
	Slices     int
}

// frameMsg carries one rasterized frame into the program
type frameMsg struct {
	canvas    []string
	elapsed   float32
	frequency float64
	level     float64
	slice     int
	eye       [3]float32
}

// Model represents the TUI state
type Model struct {
	control *Control
	track   TrackInfo

	frame     frameMsg
	frames    int
	showDebug bool

	// Dimensions
	width  int
	height int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
	canvasStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
	helpStyle = lipgloss.NewStyle().Faint(true)
)

// NewModel creates a new TUI model
func NewModel(control *Control, track TrackInfo) Model {
	return Model{
		control: control,
		track:   track,
		frame:   frameMsg{slice: -1},
	}
}

// CanvasSize returns the drawable area inside a terminal of width x height
func CanvasSize(width, height int) Size {
	h := height - chromeLines
	if h < 0 {
		h = 0
	}
	return Size{Width: width, Height: h}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.control != nil {
			m.control.resize(CanvasSize(msg.Width, msg.Height))
		}
	case frameMsg:
		m.frame = msg
		m.frames++
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCanvas())
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders the title and track line
func (m Model) renderHeader() string {
	return titleStyle.Render("Resonate Visualizer") + "  " +
		valueStyle.Render(fmt.Sprintf("%s  %dHz %s  %v  (%s)",
			truncate(m.track.Path, 40), m.track.SampleRate, channelName(m.track.Channels),
			m.track.Duration.Round(time.Millisecond), m.track.Backend))
}

// renderCanvas pads the last frame to the canvas height
func (m Model) renderCanvas() string {
	size := CanvasSize(m.width, m.height)

	var b strings.Builder
	for i := 0; i < size.Height; i++ {
		if i < len(m.frame.canvas) {
			b.WriteString(canvasStyle.Render(m.frame.canvas[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderStatus renders the playback position and current peak
func (m Model) renderStatus() string {
	slice := "-"
	if m.frame.slice >= 0 {
		slice = fmt.Sprintf("%d/%d", m.frame.slice+1, m.track.Slices)
	}

	s := headerStyle.Render("Time: ") +
		valueStyle.Render(fmt.Sprintf("%6.2fs", m.frame.elapsed)) +
		headerStyle.Render("  Slice: ") + valueStyle.Render(slice) +
		headerStyle.Render("  Peak: ") +
		valueStyle.Render(fmt.Sprintf("%7.1f Hz", m.frame.frequency)) +
		headerStyle.Render("  Level: ") +
		valueStyle.Render("["+renderBar(int(m.frame.level*100), 100, 10)+"]")

	if m.showDebug {
		s += valueStyle.Render(fmt.Sprintf("  eye (%.0f, %.0f, %.0f)  frames %d",
			m.frame.eye[0], m.frame.eye[1], m.frame.eye[2], m.frames))
	}

	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("d: debug  q: quit")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.control != nil {
			m.control.quit()
		}
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// Utility functions
func renderBar(value, max, width int) string {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}
