package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name from configuration to a zap level. Unknown
// names fall back to info so a typo never silences the logger.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
