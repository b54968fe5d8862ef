// Package logging builds the slog loggers used by the CLI and the TUI.
//
// The TUI owns the terminal, so its logs go to a file. CLI commands log to
// stderr only when asked.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/studiowebux/kycfill/internal/config"
)

// New returns a text logger writing to w
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return New(io.Discard, slog.LevelError)
}

// ForCLI logs to stderr at debug level when verbose, otherwise drops logs
func ForCLI(verbose bool) *slog.Logger {
	if !verbose {
		return Discard()
	}
	return New(os.Stderr, slog.LevelDebug)
}

// OpenFile appends logs to path. The returned closer must be closed on exit.
func OpenFile(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, config.FilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), f, nil
}
