// Package logging provides structured process-level logging, adapted
// from the teacher's internal/logging package (DESIGN.md): a thin
// zerolog wrapper with a settable output writer. Unlike the teacher,
// gateway has exactly one runtime mode (the terminal UI), so the
// cli/gui branch is gone, but the SetOutput idiom is kept for
// redirecting the logger's writer; nothing in gateway calls it.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with a redirectable output writer.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer
}

// New creates a logger writing to stderr by default, so it stays
// visible even while the tcell screen owns the terminal's alternate
// buffer.
func New() *Logger {
	return newWithWriter(os.Stderr)
}

func newWithWriter(w io.Writer) *Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return &Logger{
		zlog:   zerolog.New(output).With().Timestamp().Logger(),
		output: output,
	}
}

func (l *Logger) Info() *zerolog.Event  { return l.zlog.Info() }
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }
func (l *Logger) Warn() *zerolog.Event  { return l.zlog.Warn() }

// SetOutput changes the output writer for the logger, rebuilding it
// while preserving formatting.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	l.zlog = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer { return l.output }

// SetGlobalLevel sets the global zerolog level. No CLI flag calls it;
// -v prints the version instead.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
