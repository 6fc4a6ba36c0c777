// Package log is the module's ambient structured logger: a single global
// zerolog.Logger (info level to stderr until Init is called), with
// level-gated free functions so call sites never touch zerolog directly.
// No other package in this module calls it.
package log

import (
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	timeFormat = "2006-01-02T15:04:05.000Z07:00"
)

var (
	logger   zerolog.Logger
	loggerMu sync.RWMutex
)

func init() {
	Init(LevelInfo, "stderr")
}

func get() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func set(l zerolog.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// Logger returns the current global logger, for callers that need direct
// zerolog access (adding a sub-logger with .With(), for instance).
func Logger() *zerolog.Logger {
	l := get()
	return &l
}

// Init (re)configures the global logger. output is "stdout", "stderr", or a
// file path; level is one of the Level* constants.
func Init(level, output string) error {
	var out *os.File
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("log: cannot open output %q: %w", output, err)
		}
		out = f
	}

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}

	l := zerolog.New(console).With().Timestamp().Caller().Logger()

	zl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log: invalid level %q: %w", level, err)
	}
	l = l.Level(zl)

	set(l)
	return nil
}

// Level returns the current log level as one of the Level* constants.
func Level() string {
	return get().GetLevel().String()
}

func Debug(args ...any) { get().Debug().Msg(fmt.Sprint(args...)) }
func Info(args ...any)  { get().Info().Msg(fmt.Sprint(args...)) }
func Warn(args ...any)  { get().Warn().Msg(fmt.Sprint(args...)) }
func Error(args ...any) { get().Error().Msg(fmt.Sprint(args...)) }

func Debugf(template string, args ...any) { get().Debug().Msgf(template, args...) }
func Infof(template string, args ...any)  { get().Info().Msgf(template, args...) }
func Warnf(template string, args ...any)  { get().Warn().Msgf(template, args...) }
func Errorf(template string, args ...any) { get().Error().Msgf(template, args...) }

// Debugw/Infow/Warnw log a message with structured key-value pairs, e.g.
// log.Infow("connected", "endpoint", url, "attempt", n).
func Debugw(msg string, keyvalues ...any) { get().Debug().Fields(keyvalues).Msg(msg) }
func Infow(msg string, keyvalues ...any)  { get().Info().Fields(keyvalues).Msg(msg) }
func Warnw(msg string, keyvalues ...any)  { get().Warn().Fields(keyvalues).Msg(msg) }

// Errorw logs err at error level alongside msg.
func Errorw(err error, msg string) { get().Error().Err(err).Msg(msg) }

// WithDuration returns a sub-logger with a "took" field set to d, for
// logging at the end of a timed operation.
func WithDuration(d time.Duration) *zerolog.Event {
	return get().Info().Dur("took", d)
}
