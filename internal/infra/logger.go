package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging contract shared by every package.
type Logger = zerolog.Logger

// NewLogger builds the service logger: JSON on stdout, or a console writer
// with debug output when appEnv is "development".
func NewLogger(appEnv string) Logger {
	return newLogger(os.Stdout, appEnv)
}

func newLogger(w io.Writer, appEnv string) Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "mockup").
		Logger()
}

// NewConsoleLogger is the terminal logger: warnings only unless verbose.
func NewConsoleLogger(w io.Writer, verbose bool) Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
