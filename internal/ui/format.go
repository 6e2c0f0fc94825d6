package ui

import (
	"fmt"
	"strings"

	"taskpad/internal/service"
)

// FormatTaskLine formats one task row for the list view.
// Format: "[x] {TEXT}" or "[ ] {TEXT}", with newlines flattened.
func FormatTaskLine(task service.Task) string {
	box := "[ ]"
	if task.Done {
		box = "[x]"
	}
	return box + " " + normalizeText(task.Text)
}

// FormatStats formats the completion summary line.
// An empty collection reads "no tasks yet".
func FormatStats(completed, total int, percentage float64) string {
	if total == 0 {
		return "no tasks yet"
	}
	return fmt.Sprintf("%d of %d done (%.0f%%)", completed, total, percentage)
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
