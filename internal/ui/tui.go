// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and forwards key commands to the player
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control carries key commands from the TUI to the player loop
type Control struct {
	Toggle  chan struct{}
	Restart chan struct{}
	Quit    chan struct{}
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Toggle:  make(chan struct{}, 1),
		Restart: make(chan struct{}, 1),
		Quit:    make(chan struct{}, 1),
	}
}

// send delivers a command without blocking the TUI; repeated presses
// collapse into one pending command
func (c *Control) send(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (c *Control) toggleChan() chan struct{} {
	if c == nil {
		return nil
	}
	return c.Toggle
}

func (c *Control) restartChan() chan struct{} {
	if c == nil {
		return nil
	}
	return c.Restart
}

func (c *Control) quitChan() chan struct{} {
	if c == nil {
		return nil
	}
	return c.Quit
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control) Model {
	return Model{
		state:   "idle",
		control: ctrl,
	}
}

// Run creates the TUI program; the caller runs it
func Run(ctrl *Control) *tea.Program {
	return tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
}
