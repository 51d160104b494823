package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

// Options controls how the logger is built.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Encoding is json or console.
	Encoding string
	// OutputPaths defaults to stderr so chart output on stdout stays clean.
	OutputPaths []string
}

// DefaultOptions returns an info level JSON logger writing to stderr.
func DefaultOptions() Options {
	return Options{
		Level:       "info",
		Encoding:    "json",
		OutputPaths: []string{"stderr"},
	}
}

// NewLogger creates a new logger instance with production configuration
func NewLogger(opts Options) (*Logger, error) {
	config := zap.NewProductionConfig()

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	config.Level = zap.NewAtomicLevelAt(level)

	if opts.Encoding != "" {
		config.Encoding = opts.Encoding
	}

	if opts.Encoding == "console" {
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config.OutputPaths = opts.OutputPaths
	if len(config.OutputPaths) == 0 {
		config.OutputPaths = []string{"stderr"}
	}

	config.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewNop returns a logger that discards everything. Tests and the TUI use it.
func NewNop() *Logger {
	return &Logger{
		Logger: zap.NewNop(),
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
