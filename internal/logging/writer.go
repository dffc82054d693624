package logging

import (
	"log"
	"log/slog"
	"strings"
)

// Writer is an io.Writer that forwards each written line to slog at warn level.
type Writer struct {
	logger *slog.Logger
	source string
}

// NewWriter constructs a Writer bound to the provided logger. source is
// attached to every record.
func NewWriter(logger *slog.Logger, source string) *Writer {
	return &Writer{logger: logger, source: source}
}

// Write logs the given bytes as a single record.
func (w *Writer) Write(p []byte) (int, error) {
	if w.logger != nil {
		line := strings.TrimRight(string(p), "\n")
		if line != "" {
			w.logger.Warn(line, "source", w.source)
		}
	}
	return len(p), nil
}

// StdLogger wraps a Writer in a *log.Logger, e.g. for http.Server.ErrorLog.
func StdLogger(logger *slog.Logger, source string) *log.Logger {
	return log.New(NewWriter(logger, source), "", 0)
}
