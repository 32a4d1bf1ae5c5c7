// Package logging builds the zerolog loggers used by subflash.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "15:04:05.000"

// ParseLevel maps a level name to a zerolog level, falling back to def.
func ParseLevel(name string, def zerolog.Level) zerolog.Level {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return def
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return def
	}
	return lvl
}

// New returns a JSON logger writing to w.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level, zerolog.InfoLevel)).With().Timestamp().Logger()
}

// Console returns a human-readable logger on stderr for CLI commands.
func Console(level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat}
	return New(cw, level)
}

// OpenFile returns a logger appending JSON lines to path.
// The TUI logs here because the alternate screen owns the terminal.
func OpenFile(path, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), f, nil
}
