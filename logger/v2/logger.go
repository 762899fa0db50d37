package v2

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging interface used throughout the gateway.
// It hides the logrus backend so packages depend only on this surface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Fatal(msg string, err error, fields ...Field)

	// With returns a child logger with preset fields.
	With(fields ...Field) Logger

	Close() error
}

// Field is a single structured log field.
type Field struct {
	Key   string
	Value interface{}
}

// Config controls logger construction.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string

	// Format is the output format (text, json).
	Format string

	// Output is "stdout", "stderr", or a file path.
	Output string
}

// DefaultConfig logs info-level text to stderr. Stderr is the default
// because the stdio transport owns stdout for protocol frames.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}

type loggerImpl struct {
	logrus *logrus.Logger
	file   *os.File
	fields []Field
}

// New creates a logger from cfg.
func New(cfg Config) (Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(level)

	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}
	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		})
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
	l.SetReportCaller(true)

	var file *os.File
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "stderr", "":
		l.SetOutput(os.Stderr)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		//nolint:gosec // G304: cfg.Output comes from configuration, not user input
		file, err = os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.SetOutput(file)
	}

	return &loggerImpl{logrus: l, file: file}, nil
}

// NewDefault creates a logger with DefaultConfig, falling back to a
// no-op logger if construction fails.
func NewDefault() Logger {
	logger, err := New(DefaultConfig())
	if err != nil {
		return NewNoop()
	}
	return logger
}

// NewNoop creates a logger that discards everything. Useful in tests.
func NewNoop() Logger {
	return &noopLogger{}
}

type noopLogger struct{}

func (n *noopLogger) Debug(msg string, fields ...Field)            {}
func (n *noopLogger) Info(msg string, fields ...Field)             {}
func (n *noopLogger) Warn(msg string, fields ...Field)             {}
func (n *noopLogger) Error(msg string, err error, fields ...Field) {}
func (n *noopLogger) Fatal(msg string, err error, fields ...Field) {}
func (n *noopLogger) With(fields ...Field) Logger                  { return n }
func (n *noopLogger) Close() error                                 { return nil }

func (l *loggerImpl) entry(fields []Field) *logrus.Entry {
	all := append(l.fields, fields...)
	lf := make(logrus.Fields, len(all))
	for _, f := range all {
		lf[f.Key] = f.Value
	}
	return l.logrus.WithFields(lf)
}

func (l *loggerImpl) Debug(msg string, fields ...Field) { l.entry(fields).Debug(msg) }
func (l *loggerImpl) Info(msg string, fields ...Field)  { l.entry(fields).Info(msg) }
func (l *loggerImpl) Warn(msg string, fields ...Field)  { l.entry(fields).Warn(msg) }

func (l *loggerImpl) Error(msg string, err error, fields ...Field) {
	e := l.entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

func (l *loggerImpl) Fatal(msg string, err error, fields ...Field) {
	e := l.entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Fatal(msg)
}

func (l *loggerImpl) With(fields ...Field) Logger {
	// Child loggers share the backend but never own the file handle.
	// Preset fields are copied so siblings cannot alias each other.
	preset := make([]Field, 0, len(l.fields)+len(fields))
	preset = append(preset, l.fields...)
	preset = append(preset, fields...)
	return &loggerImpl{
		logrus: l.logrus,
		fields: preset,
	}
}

func (l *loggerImpl) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
