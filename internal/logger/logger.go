// Package logger builds the zerolog logger shared by the server components.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"timetabler/internal/config"
)

// New returns a logger configured from cfg, writing to stdout.
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter returns a logger configured from cfg that writes to w.
// Format "console" renders human-readable lines; anything else emits JSON.
func NewWithWriter(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	}

	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", "timetabler").
		Logger()
}

// Component returns a child logger annotated with the component name.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
