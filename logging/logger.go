// Package logging builds the zerolog logger shared by the EZDrive tools.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "ezdrive"

// New returns a logger at the given level. Development gets a human readable
// console writer; every other environment gets JSON lines with the caller.
func New(level, env string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, level, env)
}

func NewWithWriter(w io.Writer, level, env string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Caller().Logger()
	}

	return logger.Level(lvl).With().Str("service", serviceName).Logger(), nil
}
