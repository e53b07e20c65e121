// Package logging initializes the application's structured loggers and
// provides per-service file loggers with rotation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger *slog.Logger
	defaultLevel  = new(slog.LevelVar)
	initOnce      sync.Once
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system with a JSON handler on stdout and sets
// it as the slog default. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		defaultLevel.Set(slog.LevelInfo)
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       defaultLevel,
			ReplaceAttr: replaceLevelName,
		})
		defaultLogger = slog.New(handler)
		slog.SetDefault(defaultLogger)
	})
}

// SetLevel sets the minimum logging level for the default logger.
func SetLevel(level slog.Level) {
	defaultLevel.Set(level)
}

// Logger returns the application default logger, initializing it if needed.
func Logger() *slog.Logger {
	Init()
	return defaultLogger
}

// ForService returns a logger writing to logs/<service>.log with rotation,
// plus a closer for the underlying file. The debug flag controls the level.
// Falls back to the default logger if the log directory cannot be used.
func ForService(service string, debug bool) (*slog.Logger, func() error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logDir := "logs"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return Logger().With("service", service), func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, service+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	})

	return slog.New(handler).With("service", service), rotator.Close
}

// NewHandlerLogger builds a text logger on the given writer, used by tests
// and CLI commands that want human-readable output.
func NewHandlerLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	})
	return slog.New(handler)
}
