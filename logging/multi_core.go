package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore tees log output to the console and, when fileWriter is
// non-nil, a rotating log file. Console output uses the human-readable
// encoder in development mode and JSON otherwise; the file always receives
// JSON so it stays machine-parseable.
func NewMultiCore(level zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, development bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if development {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, consoleWriter, level),
	}
	if fileWriter != nil {
		fileEncoder := zapcore.NewJSONEncoder(NewEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, fileWriter, level))
	}

	return zapcore.NewTee(cores...)
}
