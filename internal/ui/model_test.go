// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling, and render helpers
package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Control is optional for testing

	if model.state != "idle" {
		t.Errorf("expected initial state idle, got %q", model.state)
	}
	if model.cursor != 0 || model.total != 0 {
		t.Errorf("expected empty progress, got %d/%d", model.cursor, model.total)
	}
}

func TestStatusMsgSource(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		File:       "track.flac",
		SampleRate: 96000,
		Channels:   2,
	})

	if model.file != "track.flac" {
		t.Errorf("expected file 'track.flac', got '%s'", model.file)
	}
	if model.sampleRate != 96000 {
		t.Errorf("expected sampleRate 96000, got %d", model.sampleRate)
	}
	if model.channels != 2 {
		t.Errorf("expected channels 2, got %d", model.channels)
	}
}

func TestStatusMsgDevice(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		Device: "USB DAC",
		Format: "96000Hz 2ch 24-bit int aligned-high",
		State:  "playing",
	})

	if model.device != "USB DAC" {
		t.Errorf("expected device 'USB DAC', got '%s'", model.device)
	}
	if model.format != "96000Hz 2ch 24-bit int aligned-high" {
		t.Errorf("unexpected format %q", model.format)
	}
	if model.state != "playing" {
		t.Errorf("expected state playing, got %q", model.state)
	}
}

func TestStatusMsgProgress(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{Cursor: 100, Total: 400})
	if model.cursor != 100 || model.total != 400 {
		t.Fatalf("expected 100/400, got %d/%d", model.cursor, model.total)
	}

	// A zero total leaves progress unchanged
	model.applyStatus(StatusMsg{State: "stopped"})
	if model.cursor != 100 || model.total != 400 {
		t.Errorf("progress should be retained, got %d/%d", model.cursor, model.total)
	}

	// Cursor back at zero applies when total is present
	model.applyStatus(StatusMsg{Cursor: 0, Total: 400})
	if model.cursor != 0 {
		t.Errorf("expected cursor reset to 0, got %d", model.cursor)
	}
}

func TestStatusMsgError(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{Err: errors.New("device lost")})
	if model.err != "device lost" {
		t.Errorf("expected error text, got %q", model.err)
	}

	model.width = 80
	if !strings.Contains(model.View(), "device lost") {
		t.Error("view should show the error")
	}
}

func TestMultipleStatusUpdates(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{Device: "Speakers", State: "playing"})
	model.applyStatus(StatusMsg{State: "depleted"})

	if model.device != "Speakers" {
		t.Error("previous device value was lost")
	}
	if model.state != "depleted" {
		t.Error("new state not applied")
	}
}

func TestViewLoading(t *testing.T) {
	model := NewModel(nil)
	if model.View() != "Loading..." {
		t.Errorf("expected loading view before window size, got %q", model.View())
	}

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := updated.(Model).View()
	if !strings.Contains(view, "No source") {
		t.Errorf("expected empty source view, got:\n%s", view)
	}
}

func TestKeyCommands(t *testing.T) {
	ctrl := NewControl()
	model := NewModel(ctrl)

	model.Update(tea.KeyMsg{Type: tea.KeySpace})
	select {
	case <-ctrl.Toggle:
	default:
		t.Error("space should send toggle")
	}

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	select {
	case <-ctrl.Restart:
	default:
		t.Error("r should send restart")
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should return a quit command")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("q should send quit")
	}
}

func TestKeyCommandsDoNotBlock(t *testing.T) {
	ctrl := NewControl()
	model := NewModel(ctrl)

	// Buffer holds one command; extra presses are dropped
	for i := 0; i < 5; i++ {
		model.Update(tea.KeyMsg{Type: tea.KeySpace})
	}
	if len(ctrl.Toggle) != 1 {
		t.Errorf("expected one pending toggle, got %d", len(ctrl.Toggle))
	}

	// No control attached
	NewModel(nil).Update(tea.KeyMsg{Type: tea.KeySpace})
}

func TestElapsed(t *testing.T) {
	model := NewModel(nil)
	model.applyStatus(StatusMsg{File: "a.wav", SampleRate: 48000, Channels: 2})
	model.applyStatus(StatusMsg{Cursor: 48000 * 2 * 65, Total: 48000 * 2 * 125})

	if model.elapsed() != "1:05" {
		t.Errorf("expected 1:05, got %s", model.elapsed())
	}
	if model.length() != "2:05" {
		t.Errorf("expected 2:05, got %s", model.length())
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		filled            int
	}{
		{0, 100, 10, 0},
		{50, 100, 10, 5},
		{100, 100, 10, 10},
		{150, 100, 10, 10},
		{5, 0, 10, 0},
	}

	for _, tt := range tests {
		bar := renderBar(tt.value, tt.max, tt.width)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%d, %d, %d) filled %d, expected %d", tt.value, tt.max, tt.width, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("renderBar(%d, %d, %d) width %d", tt.value, tt.max, tt.width, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{61500 * time.Millisecond, "1:01"},
		{10 * time.Minute, "10:00"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.expected {
			t.Errorf("formatDuration(%v) = %q, expected %q", tt.d, got, tt.expected)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestChannelNameFunction(t *testing.T) {
	tests := []struct {
		channels int
		expected string
	}{
		{1, "Mono"},
		{2, "Stereo"},
		{6, "6ch"},
	}

	for _, tt := range tests {
		result := channelName(tt.channels)
		if result != tt.expected {
			t.Errorf("channelName(%d) = %q, expected %q",
				tt.channels, result, tt.expected)
		}
	}
}
