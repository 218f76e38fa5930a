// Package log provides the process-wide progress logger used by the publisher.
package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the verbosity of logging.
type Level string

const (
	LevelDebug Level = "debug"
	// LevelInfo is accepted as a synonym of LevelProgress.
	LevelInfo Level = "info"
	// LevelProgress shows milestone lines and warnings. Step details are
	// logged at debug. Default.
	LevelProgress Level = "progress"
	LevelWarn     Level = "warn"
	LevelError    Level = "error"
)

var (
	global *zap.SugaredLogger
	mu     sync.RWMutex
)

// Config holds logger configuration.
type Config struct {
	Level Level
	// Output defaults to os.Stderr, keeping stdout for reported outputs.
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{Level: LevelProgress, Output: os.Stderr}
}

// Init replaces the global logger.
func Init(cfg Config) {
	logger := build(cfg)

	mu.Lock()
	defer mu.Unlock()
	global = logger
}

// Reset drops the global logger; the next Get builds a default one.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	global = nil
}

// Get returns the global logger, initializing it with DefaultConfig if needed.
func Get() *zap.SugaredLogger {
	mu.RLock()
	logger := global
	mu.RUnlock()
	if logger != nil {
		return logger
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = build(DefaultConfig())
	}
	return global
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo, LevelProgress:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func build(cfg Config) *zap.SugaredLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(out), toZapLevel(cfg.Level))
	return zap.New(core).Sugar()
}

func Debug(msg string, keysAndValues ...interface{}) {
	Get().Debugw(msg, keysAndValues...)
}

// Progressf logs a milestone line.
func Progressf(template string, args ...interface{}) {
	Get().Infof(template, args...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	Get().Warnw(msg, keysAndValues...)
}
