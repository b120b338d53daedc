// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Configures the default logger for stderr or an append-only file sink.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options selects level, format and destination.
type Options struct {
	Level  string // debug, info, warn, error (default: info)
	Format string // text, json (default: text)
	File   string // empty logs to stderr
}

// Init configures the default slog logger. Stdout is left for command output.
// The returned function closes the log file, if any.
func Init(opts Options) (func() error, error) {
	w := io.Writer(os.Stderr)
	closeFn := func() error { return nil }

	if opts.File != "" {
		f, err := openFile(opts.File)
		if err != nil {
			return closeFn, err
		}
		w = f
		closeFn = f.Close
	}

	slog.SetDefault(slog.New(newHandler(w, opts)))
	return closeFn, nil
}

// Discard silences the default logger, e.g. while a full-screen UI owns the terminal.
func Discard() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newHandler(w io.Writer, opts Options) slog.Handler {
	hopts := &slog.HandlerOptions{
		Level: parseLevel(opts.Level),
	}
	if strings.ToLower(opts.Format) == "json" {
		return slog.NewJSONHandler(w, hopts)
	}
	return slog.NewTextHandler(w, hopts)
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
