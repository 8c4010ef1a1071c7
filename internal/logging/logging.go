// Package logging builds the service logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/config"
)

// New builds a logger writing to stdout as configured. The "auto" format
// writes text to a terminal and JSON otherwise.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newLogger(os.Stdout, cfg, isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
}

func newLogger(w io.Writer, cfg config.LoggingConfig, terminal bool) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "auto":
		if terminal {
			return slog.New(slog.NewTextHandler(w, opts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// ParseLevel converts a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Writer adapts a logger to an io.Writer, logging each write as one line at
// info level. Used for the HTTP access log.
func Writer(logger *slog.Logger, msg string) io.Writer {
	return &lineWriter{logger: logger, msg: msg}
}

type lineWriter struct {
	logger *slog.Logger
	msg    string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.logger.Info(w.msg, slog.String("line", strings.TrimRight(string(p), "\n")))
	return len(p), nil
}
