package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOptions select verbosity, encoding and destination.
type LoggerOptions struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string
	// Development switches to a coloured console encoder.
	Development bool
	// Service is stamped on every entry as "service".
	Service string
	// Output is a zap sink path; empty means stdout. The CLI logs to
	// stderr so that command output stays clean.
	Output string
}

// NewLogger builds the process logger.
func NewLogger(opts LoggerOptions) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}

	enc := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoding := "json"
	if opts.Development {
		encoding = "console"
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	out := opts.Output
	if out == "" {
		out = "stdout"
	}
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       opts.Development,
		Encoding:          encoding,
		EncoderConfig:     enc,
		OutputPaths:       []string{out},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !opts.Development,
	}
	if opts.Service != "" {
		cfg.InitialFields = map[string]any{"service": opts.Service}
	}
	return cfg.Build()
}
