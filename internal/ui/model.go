// ABOUTME: Bubbletea model for the playback progress TUI
// ABOUTME: Defines display state and key handling
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sendspin/deviceplayer/internal/version"
	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Source
	file       string
	sampleRate int
	channels   int

	// Device
	device string
	format string

	// Playback
	state  string
	cursor int
	total  int
	err    string

	control *Control

	// Dimensions
	width  int
	height int
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
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderSource()
	s += m.renderProgress()
	s += m.renderHelp()

	return s
}

// renderHeader renders the product line and device
func (m Model) renderHeader() string {
	device := m.device
	if device == "" {
		device = "(no device)"
	}

	return fmt.Sprintf(`┌─ %-50s ┐
│ Device: %-45s │
│ Format: %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(version.Product+" "+version.Version, 50), truncate(device, 45), truncate(m.format, 45))
}

// renderSource renders the loaded file
func (m Model) renderSource() string {
	if m.file == "" {
		return "│ No source                                            │\n"
	}

	return fmt.Sprintf("│ File:   %-45s │\n│ Source: %-45s │\n",
		truncate(m.file, 45), fmt.Sprintf("%dHz %s", m.sampleRate, channelName(m.channels)))
}

// renderProgress renders cursor position and state
func (m Model) renderProgress() string {
	s := "│                                                      │\n"
	s += fmt.Sprintf("│ [%s] %3d%%%-13s │\n", renderBar(m.cursor, m.total, 30), percent(m.cursor, m.total), "")
	s += fmt.Sprintf("│ %-52s │\n", fmt.Sprintf("%s / %s  %s", m.elapsed(), m.length(), m.state))
	if m.err != "" {
		s += fmt.Sprintf("│ Error: %-46s │\n", truncate(m.err, 46))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ space:Pause/Resume  r:Restart  q:Quit                │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.control.send(m.control.quitChan())
		return m, tea.Quit
	case " ", "space":
		m.control.send(m.control.toggleChan())
	case "r":
		m.control.send(m.control.restartChan())
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.File != "" {
		m.file = msg.File
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
	}
	if msg.Device != "" {
		m.device = msg.Device
	}
	if msg.Format != "" {
		m.format = msg.Format
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Total != 0 {
		m.cursor = msg.Cursor
		m.total = msg.Total
	}
	if msg.Err != nil {
		m.err = msg.Err.Error()
	}
}

// elapsed converts the cursor into playback time
func (m Model) elapsed() string {
	return formatDuration(m.samplesToDuration(m.cursor))
}

func (m Model) length() string {
	return formatDuration(m.samplesToDuration(m.total))
}

func (m Model) samplesToDuration(samples int) time.Duration {
	if m.sampleRate <= 0 || m.channels <= 0 {
		return 0
	}
	frames := samples / m.channels
	return time.Duration(frames) * time.Second / time.Duration(m.sampleRate)
}

// StatusMsg updates TUI state. Zero fields are left unchanged.
type StatusMsg struct {
	File       string
	SampleRate int
	Channels   int
	Device     string
	Format     string
	State      string
	Cursor     int
	Total      int
	Err        error
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func percent(value, max int) int {
	if max <= 0 {
		return 0
	}
	return value * 100 / max
}

func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
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
