package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger for the process. Components derive their own
// loggers from it with a "component" field.
func New(debug bool, version string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorFieldName = "err"

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("version", version).
		Logger()
}
