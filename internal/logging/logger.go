// Package logging wraps log/slog with the field names used across neuromap.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Logger wraps slog.Logger with neuromap-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewJSONLogger creates a Logger that writes JSON lines to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// New builds a Logger for w. format is text, json or auto; auto picks text when w
// is a terminal and JSON otherwise.
func New(w io.Writer, level slog.Level, format string) (*Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto":
		if isTerminal(w) {
			return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}, nil
		}
		return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}, nil
	case "text":
		return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}, nil
	case "json":
		return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unsupported log level: %s", name)
	}
	return level, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WithSnapshot tags records with a dataset snapshot id.
func (l *Logger) WithSnapshot(id string) *Logger {
	return &Logger{Logger: l.Logger.With("snapshot", id)}
}

// WithDims tags records with the session's input and output dimensions.
func (l *Logger) WithDims(inputDim, outputDim int) *Logger {
	return &Logger{Logger: l.Logger.With("input_dim", inputDim, "output_dim", outputDim)}
}

// LogAppend logs the outcome of adding a sample.
func (l *Logger) LogAppend(ctx context.Context, size int, err error) {
	if err != nil {
		l.WarnContext(ctx, "sample rejected", "size", size, "error", err)
		return
	}
	l.DebugContext(ctx, "sample added", "size", size)
}

// LogModeChange logs a workflow phase transition.
func (l *Logger) LogModeChange(ctx context.Context, from, to fmt.Stringer) {
	l.InfoContext(ctx, "mode changed", "from", from.String(), "mode", to.String())
}
