package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns the service logger: JSON on stderr, human-readable in development.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stderr)
}

func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w}
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).With().Timestamp().Str("service", "creator-app").Logger().Level(level)
}
