// Package logging writes the debug log file. The terminal belongs to the
// TUI, so log output never goes to stdout or stderr.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Open creates a logger writing to path. With debug disabled the logger
// discards everything and no file is created. The returned closer must be
// closed on shutdown.
func Open(path string, debug bool) (*log.Logger, io.Closer, error) {
	if !debug {
		logger := log.NewWithOptions(io.Discard, log.Options{})
		return logger, nopCloser{}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewWithOptions(file, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
