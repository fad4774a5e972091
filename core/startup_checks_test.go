package core

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func testChecksConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:        7860,
		HistoryRoot: filepath.Join(t.TempDir(), "history"),
	}
}

func TestStartupChecks_CloudOnlyConfig(t *testing.T) {
	cfg := testChecksConfig(t)
	cfg.OpenAIAPIKey = "sk-test"

	result := NewStartupChecks(cfg).WithShowProgress(false).Run()
	if !result.Success {
		t.Fatalf("checks failed: %v", result.Errors())
	}
	if result.Failed != 0 {
		t.Errorf("failed = %d", result.Failed)
	}
}

func TestStartupChecks_MissingModelFails(t *testing.T) {
	cfg := testChecksConfig(t)
	cfg.SDBinaryPath = "sh" // always on PATH
	cfg.Pipelines = []PipelineConfig{{Name: "SD1.5", ModelPath: "/does/not/exist.safetensors"}}

	result := NewStartupChecks(cfg).WithShowProgress(false).Run()
	if result.Success {
		t.Fatal("expected failure for missing model file")
	}
	if len(result.Errors()) == 0 {
		t.Error("no errors reported")
	}
}

func TestStartupChecks_ModelPresent(t *testing.T) {
	cfg := testChecksConfig(t)
	cfg.SDBinaryPath = "sh"
	model := filepath.Join(t.TempDir(), "model.safetensors")
	if err := os.WriteFile(model, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Pipelines = []PipelineConfig{{Name: "SD1.5", ModelPath: model}}

	result := NewStartupChecks(cfg).WithShowProgress(false).Run()
	if !result.Success {
		t.Fatalf("checks failed: %v", result.Errors())
	}
}

func TestStartupChecks_HistoryRootCreated(t *testing.T) {
	cfg := testChecksConfig(t)
	cfg.OpenAIAPIKey = "sk-test"

	NewStartupChecks(cfg).WithShowProgress(false).Run()

	info, err := os.Stat(cfg.HistoryRoot)
	if err != nil || !info.IsDir() {
		t.Errorf("history root not created: %v", err)
	}
}

func TestStartupChecks_ProgressOutput(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	cfg := testChecksConfig(t)
	cfg.OpenAIAPIKey = "sk-test"

	var buf bytes.Buffer
	result := NewStartupChecks(cfg).WithOutput(&buf).Run()
	if !result.Success {
		t.Fatalf("checks failed: %v", result.Errors())
	}

	out := buf.String()
	for _, want := range []string{"Startup Checks", "history directory", "cloud fallback", "Checks Passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckStatusString(t *testing.T) {
	cases := map[CheckStatus]string{
		CheckPassed:  "passed",
		CheckFailed:  "failed",
		CheckWarning: "warning",
		CheckSkipped: "skipped",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}
