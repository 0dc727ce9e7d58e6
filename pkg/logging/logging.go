// Package logging builds the zerolog logger used by the CLI.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/khalid-nowaf/multibit/pkg/config"
)

// NewLogger writes to stderr, keeping stdout for command results.
func NewLogger(conf config.LoggingConfig) zerolog.Logger {
	return newLogger(os.Stderr, conf)
}

func newLogger(out io.Writer, conf config.LoggingConfig) zerolog.Logger {
	if conf.Format == config.LogTextFormat {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(conf.Level).With().Timestamp().Logger()
	}

	return zerolog.New(out).Level(conf.Level).With().Timestamp().Logger()
}
