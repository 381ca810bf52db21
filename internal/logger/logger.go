// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger tagged with service and hostname. Pretty switches
// to the console writer for local runs.
func New(service, level string, pretty bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, service, level, pretty)
}

func NewWithWriter(w io.Writer, service, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname()).
		Logger()
}

func hostname() string { h, _ := os.Hostname(); return h }
