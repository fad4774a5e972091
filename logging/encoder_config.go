// Package logging builds the structured zap logger used across the studio.
// The logger is created once in main and injected into each component; no
// package keeps an ambient global logger.
package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Standard field keys used in JSON log output.
const (
	FieldTimestamp = "timestamp"
	FieldLevel     = "level"
	FieldSource    = "source"
	FieldMessage   = "message"
)

// NewEncoderConfig returns the encoder configuration for JSON (file) output:
// ISO-8601 UTC timestamps and short caller paths.
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        FieldTimestamp,
		LevelKey:       FieldLevel,
		NameKey:        "logger",
		CallerKey:      FieldSource,
		MessageKey:     FieldMessage,
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewConsoleEncoderConfig returns the encoder configuration for development
// console output: colored levels, human-readable times.
func NewConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := NewEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return cfg
}

func utcISO8601TimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}
