package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// lineInput is a minimal single-line text input. No cursor movement or
// selection; runes append, backspace deletes.
type lineInput struct {
	value  []rune
	masked bool
}

// handleKey consumes printable keys and backspace. Returns true when the
// key was consumed.
func (i *lineInput) handleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		i.value = append(i.value, msg.Runes...)
		return true
	case tea.KeySpace:
		i.value = append(i.value, ' ')
		return true
	case tea.KeyBackspace:
		if len(i.value) > 0 {
			i.value = i.value[:len(i.value)-1]
		}
		return true
	}
	return false
}

// String returns the raw input text.
func (i *lineInput) String() string {
	return string(i.value)
}

// Display returns the text for rendering, masked when the input holds a
// password.
func (i *lineInput) Display() string {
	if i.masked {
		return strings.Repeat("*", len(i.value))
	}
	return string(i.value)
}

// Clear resets the input.
func (i *lineInput) Clear() {
	i.value = i.value[:0]
}

// Empty reports whether the input holds no text.
func (i *lineInput) Empty() bool {
	return len(i.value) == 0
}
