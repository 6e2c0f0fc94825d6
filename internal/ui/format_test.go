package ui_test

import (
	"strings"
	"testing"

	"taskpad/internal/service"
	"taskpad/internal/testutil"
	"taskpad/internal/ui"
)

func TestFormatTaskLine(t *testing.T) {
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{"open", service.Task{Text: "Buy milk"}, "[ ] Buy milk"},
		{"done", service.Task{Text: "Ship release", Done: true}, "[x] Ship release"},
		{"whitespace only", service.Task{Text: "   "}, "[ ] (untitled)"},
		{"newlines flattened", service.Task{Text: "a\nb"}, "[ ] a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ui.FormatTaskLine(tt.task); got != tt.want {
				t.Errorf("FormatTaskLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatStats(t *testing.T) {
	if got := ui.FormatStats(0, 0, 0); got != "no tasks yet" {
		t.Errorf("empty stats = %q", got)
	}
	if got := ui.FormatStats(1, 4, 25); got != "1 of 4 done (25%)" {
		t.Errorf("stats = %q", got)
	}
	if got := ui.FormatStats(2, 3, 100.0*2/3); got != "2 of 3 done (67%)" {
		t.Errorf("stats = %q", got)
	}
}

func TestTaskViewBlock_Golden(t *testing.T) {
	tasks := []service.Task{
		{Text: "Buy milk"},
		{Text: "Ship release", Done: true},
		{Text: "   "},
		{Text: "a\nb"},
	}

	var b strings.Builder
	for _, task := range tasks {
		b.WriteString(ui.FormatTaskLine(task) + "\n")
	}
	b.WriteString(ui.FormatStats(1, 4, 25) + "\n")

	testutil.GoldenString(t, "taskview", b.String())
}
