package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// --------------------------------------------------------------------------
// Custom Logger (printf style facade over log/slog)
// --------------------------------------------------------------------------

// ILogger is the logging interface used by all rpc packages
type ILogger interface {
	SetLevel(level slog.Level)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// tkvLogger implements the ILogger interface with a named slog backend
type tkvLogger struct {
	name  string
	level *slog.LevelVar
}

func (l *tkvLogger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

func (l *tkvLogger) Debugf(format string, args ...interface{}) {
	l.log(slog.LevelDebug, format, args...)
}

func (l *tkvLogger) Infof(format string, args ...interface{}) {
	l.log(slog.LevelInfo, format, args...)
}

func (l *tkvLogger) Warningf(format string, args ...interface{}) {
	l.log(slog.LevelWarn, format, args...)
}

func (l *tkvLogger) Errorf(format string, args ...interface{}) {
	l.log(slog.LevelError, format, args...)
}

func (l *tkvLogger) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *tkvLogger) log(level slog.Level, format string, args ...interface{}) {
	if level < l.level.Level() {
		return
	}
	backend().Log(context.Background(), level, fmt.Sprintf(format, args...), slog.String("logger", l.name))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	loggerMu     sync.RWMutex
	loggers      = map[string]*tkvLogger{}
	defaultLevel = slog.LevelInfo

	// the shared slog backend, swapped out by InitLoggers
	slogBackend = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
)

// backend returns the shared slog backend
func backend() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return slogBackend
}

// GetLogger returns the named logger, creating it on first use.
// Loggers default to level info until InitLoggers is called.
func GetLogger(pkgName string) ILogger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if l, ok := loggers[pkgName]; ok {
		return l
	}

	level := &slog.LevelVar{}
	level.Set(defaultLevel)
	l := &tkvLogger{name: pkgName, level: level}
	loggers[pkgName] = l
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseLogLevel converts a string level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers configures the shared backend and sets the level of all
// loggers created so far (and the default for ones created later)
func InitLoggers(config ServerConfig) {
	level := parseLogLevel(config.LogLevel)

	// slog itself stays wide open, filtering happens per named logger
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler
	if config.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()

	slogBackend = slog.New(handler)
	defaultLevel = level
	for _, l := range loggers {
		l.level.Set(level)
	}
}
