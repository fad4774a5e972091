package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{" Error ", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMultiCoreJSONFields(t *testing.T) {
	var buf bytes.Buffer
	core := NewMultiCore(zapcore.InfoLevel, zapcore.AddSync(&buf), nil, false)
	log := zap.New(core)

	log.Info("generation complete", zap.String("mode", "txt2img"), zap.Int("width", 512))
	if err := log.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if entry[FieldMessage] != "generation complete" {
		t.Errorf("message = %v", entry[FieldMessage])
	}
	if entry[FieldLevel] != "info" {
		t.Errorf("level = %v", entry[FieldLevel])
	}
	if entry["mode"] != "txt2img" {
		t.Errorf("mode field = %v", entry["mode"])
	}
	ts, _ := entry[FieldTimestamp].(string)
	if !strings.HasSuffix(ts, "Z") {
		t.Errorf("timestamp not UTC: %q", ts)
	}
}

func TestMultiCoreLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	core := NewMultiCore(zapcore.WarnLevel, zapcore.AddSync(&buf), nil, false)
	log := zap.New(core)

	log.Info("should be dropped")
	log.Warn("should be kept")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Error("info entry emitted at warn level")
	}
	if !strings.Contains(out, "should be kept") {
		t.Error("warn entry missing")
	}
}

func TestMultiCoreTeesToFileWriter(t *testing.T) {
	var console, file bytes.Buffer
	core := NewMultiCore(zapcore.InfoLevel, zapcore.AddSync(&console), zapcore.AddSync(&file), true)
	log := zap.New(core)

	log.Info("teed entry")

	if !strings.Contains(console.String(), "teed entry") {
		t.Error("console sink missing entry")
	}
	if !strings.Contains(file.String(), "teed entry") {
		t.Error("file sink missing entry")
	}
	// The file sink stays JSON even in development mode.
	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Errorf("file sink is not JSON: %v", err)
	}
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.log")
	log := New(Options{Level: zapcore.InfoLevel, FilePath: path})

	log.Info("startup")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "startup") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestFileWriterConfigDefaults(t *testing.T) {
	cfg := DefaultFileWriterConfig()
	if cfg.MaxSizeMB != DefaultMaxSizeMB || cfg.MaxBackups != DefaultMaxBackups || cfg.MaxAgeDays != DefaultMaxAgeDays {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("compression should default on")
	}
}
