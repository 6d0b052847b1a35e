// Package loggingtest holds logging helpers for tests.
package loggingtest

import (
	"io"
	"log/slog"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
)

// NewDiscard returns a Logger that drops every record.
func NewDiscard() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
