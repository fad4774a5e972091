package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures logger construction.
type Options struct {
	// Level is the minimum level emitted on every sink.
	Level zapcore.Level
	// Development switches the console sink to the colored human encoder.
	Development bool
	// FilePath, when non-empty, adds a rotating JSON file sink.
	FilePath string
	// FileWriter overrides rotation settings when FilePath is set.
	FileWriter FileWriterConfig
}

// New builds the studio logger. Stdout always receives output; a rotating
// file sink is added when opts.FilePath is set. The caller owns the logger
// and should Sync it on shutdown.
func New(opts Options) *zap.Logger {
	var fileWriter zapcore.WriteSyncer
	if opts.FilePath != "" {
		cfg := opts.FileWriter
		if cfg == (FileWriterConfig{}) {
			cfg = DefaultFileWriterConfig()
		}
		fileWriter = NewFileWriterWithConfig(opts.FilePath, cfg)
	}

	core := NewMultiCore(opts.Level, zapcore.Lock(os.Stdout), fileWriter, opts.Development)

	zapOpts := []zap.Option{zap.AddCaller()}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development())
	}
	return zap.New(core, zapOpts...)
}
