// Package logging provides structured logging for the command line client.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fsnav/fsnav/internal/constants"
)

// Logger wraps zerolog with console formatting and optional file rotation.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	file    *lumberjack.Logger
}

// Option customizes a Logger at construction.
type Option func(*Logger)

// WithOutput sends console output to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.console = consoleWriter(w)
	}
}

// WithFile additionally writes JSON lines to a rotating log file.
// An empty path disables file logging.
func WithFile(path string) Option {
	return func(l *Logger) {
		if path == "" {
			return
		}
		l.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    constants.LogFileMaxSizeMB,
			MaxBackups: constants.LogFileMaxBackups,
			MaxAge:     constants.LogFileMaxAgeDays,
			Compress:   true,
		}
	}
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
}

// NewLogger creates a logger. Console output goes to stderr so that command
// output on stdout stays clean for piping.
func NewLogger(opts ...Option) *Logger {
	l := &Logger{console: consoleWriter(os.Stderr)}
	for _, opt := range opts {
		opt(l)
	}
	l.rebuild()
	return l
}

// NewNopLogger returns a logger that discards everything. Used in tests.
func NewNopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop(), console: io.Discard}
}

func (l *Logger) rebuild() {
	var w io.Writer = l.console
	if l.file != nil {
		w = zerolog.MultiLevelWriter(l.console, l.file)
	}
	l.zlog = zerolog.New(w).With().Timestamp().Logger()
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger context with additional fields.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// Named returns a copy of the logger tagged with a component field.
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		zlog:    l.zlog.With().Str("component", component).Logger(),
		console: l.console,
		file:    l.file,
	}
}

// SetOutput redirects console output, e.g. above a spinner.
func (l *Logger) SetOutput(w io.Writer) {
	l.console = consoleWriter(w)
	l.rebuild()
}

// Debugf logs a debug message with printf-style formatting.
// This is only shown when verbose mode is enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
