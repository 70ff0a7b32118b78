// Package logging provides the structured, field-based logger shared by every
// component of the analyzer. It is a thin layer over zap with optional
// size-based file rotation through lumberjack.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is a set of structured key/value pairs attached to a log entry
type Fields map[string]any

// Level is a textual log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Logger is the logging interface used throughout the module
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// Config controls where and how log entries are written
type Config struct {
	Level  Level
	Format string // "json" or "console"

	// OutputPath enables an additional rotated log file when set
	OutputPath string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Writer overrides stderr as the console sink. Mostly useful in tests.
	Writer io.Writer
}

var (
	mu    sync.RWMutex
	root  *zap.Logger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	root = zap.New(newCore(Config{Format: "json"}), zap.AddCaller(), zap.AddCallerSkip(1))
}

// Configure rebuilds the root logger from cfg. Loggers obtained before the
// call keep writing to the previous sinks.
func Configure(cfg Config) error {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	level.SetLevel(lvl)

	if cfg.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	root = zap.New(newCore(cfg),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return nil
}

// SetLevel changes the level of every logger created by this package
func SetLevel(l Level) {
	lvl, err := ParseLevel(l)
	if err != nil {
		return
	}
	level.SetLevel(lvl)
}

// ParseLevel converts a textual level into its zap equivalent
func ParseLevel(l Level) (zapcore.Level, error) {
	switch Level(strings.ToLower(string(l))) {
	case DebugLevel:
		return zapcore.DebugLevel, nil
	case InfoLevel, "":
		return zapcore.InfoLevel, nil
	case WarnLevel, "warning":
		return zapcore.WarnLevel, nil
	case ErrorLevel:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", l)
	}
}

// NewDefaultLogger returns a logger bound to the root sinks with no fields
func NewDefaultLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zapLogger{z: root}
}

// WithFields returns a root logger carrying fields on every entry
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

// FromZap wraps an existing zap logger
func FromZap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

func newCore(cfg Config) zapcore.Core {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var consoleEncoder zapcore.Encoder
	if cfg.Format == "console" {
		consoleEncoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var sink io.Writer = os.Stderr
	if cfg.Writer != nil {
		sink = cfg.Writer
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(sink), level)

	if cfg.OutputPath == "" {
		return consoleCore
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level)

	return zapcore.NewTee(consoleCore, fileCore)
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.z.Debug(msg, toZap(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.z.Info(msg, toZap(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.z.Warn(msg, toZap(fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	zf := toZap(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.z.Error(msg, zf...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{z: l.z.With(toZap([]Fields{fields})...)}
}

// toZap flattens field sets in key order so output is stable
func toZap(sets []Fields) []zap.Field {
	if len(sets) == 0 {
		return nil
	}

	var out []zap.Field
	for _, set := range sets {
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Any(k, set[k]))
		}
	}
	return out
}
