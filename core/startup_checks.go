package core

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fatih/color"
)

// CheckStatus represents the outcome of a single startup check.
type CheckStatus int

// Check outcomes.
const (
	CheckPassed CheckStatus = iota
	CheckFailed
	CheckWarning
	CheckSkipped
)

// String returns the string representation of a check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPassed:
		return "passed"
	case CheckFailed:
		return "failed"
	case CheckWarning:
		return "warning"
	case CheckSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// CheckResult is one completed startup check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Error   error
}

// ChecksResult aggregates a full startup check run.
type ChecksResult struct {
	Checks   []CheckResult
	Passed   int
	Failed   int
	Warnings int
	Duration time.Duration
	Success  bool
}

// StartupChecks verifies that the configured binaries, model files, and
// directories are usable before the server starts, with colored progress
// output. Failures here are configuration mistakes the operator should fix
// before the process does anything else.
type StartupChecks struct {
	config       *Config
	output       io.Writer
	showProgress bool
}

// NewStartupChecks creates a check suite for the given configuration.
func NewStartupChecks(config *Config) *StartupChecks {
	return &StartupChecks{
		config:       config,
		output:       os.Stdout,
		showProgress: true,
	}
}

// WithOutput sets the writer for progress messages.
func (s *StartupChecks) WithOutput(w io.Writer) *StartupChecks {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *StartupChecks) WithShowProgress(show bool) *StartupChecks {
	s.showProgress = show
	return s
}

// Run executes all startup checks and returns the aggregated result.
func (s *StartupChecks) Run() ChecksResult {
	start := time.Now()
	result := ChecksResult{Success: true}

	if s.showProgress {
		s.printHeader("Startup Checks")
	}

	checks := []func() CheckResult{
		s.checkSDBinary,
		s.checkModels,
		s.checkUpscalerBinary,
		s.checkCloudFallback,
		s.checkHistoryRoot,
	}
	for _, check := range checks {
		cr := check()
		result.Checks = append(result.Checks, cr)
		switch cr.Status {
		case CheckPassed:
			result.Passed++
		case CheckFailed:
			result.Failed++
			result.Success = false
		case CheckWarning:
			result.Warnings++
		}
		if s.showProgress {
			s.printCheck(cr)
		}
	}

	result.Duration = time.Since(start)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

// checkSDBinary verifies the stable-diffusion binary is runnable. A missing
// binary is only a failure when local pipelines are configured.
func (s *StartupChecks) checkSDBinary() CheckResult {
	name := "stable-diffusion binary"
	if len(s.config.Pipelines) == 0 {
		return CheckResult{Name: name, Status: CheckSkipped, Message: "no local pipelines configured"}
	}

	bin := s.config.SDBinaryPath
	if bin == "" {
		bin = "sd"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return CheckResult{Name: name, Status: CheckFailed, Error: fmt.Errorf("%s not found on PATH", bin)}
	}
	return CheckResult{Name: name, Status: CheckPassed, Message: path}
}

// checkModels verifies each configured model file exists and is not a
// directory.
func (s *StartupChecks) checkModels() CheckResult {
	name := "model files"
	if len(s.config.Pipelines) == 0 {
		return CheckResult{Name: name, Status: CheckSkipped, Message: "no local pipelines configured"}
	}

	for _, p := range s.config.Pipelines {
		info, err := os.Stat(p.ModelPath)
		if err != nil {
			return CheckResult{Name: name, Status: CheckFailed, Error: fmt.Errorf("%s: %s not found", p.Name, p.ModelPath)}
		}
		if info.IsDir() {
			return CheckResult{Name: name, Status: CheckFailed, Error: fmt.Errorf("%s: %s is a directory", p.Name, p.ModelPath)}
		}
	}
	return CheckResult{Name: name, Status: CheckPassed, Message: fmt.Sprintf("%d pipeline(s)", len(s.config.Pipelines))}
}

// checkUpscalerBinary verifies the RealESRGAN binary is runnable. Upscaling
// is optional, so a missing binary is a warning, not a failure.
func (s *StartupChecks) checkUpscalerBinary() CheckResult {
	name := "upscaler binary"
	bin := s.config.UpscalerBinaryPath
	if bin == "" {
		bin = "realesrgan-ncnn-vulkan"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: bin + " not found, upscaling disabled"}
	}
	return CheckResult{Name: name, Status: CheckPassed, Message: path}
}

// checkCloudFallback reports whether the cloud image API is configured.
func (s *StartupChecks) checkCloudFallback() CheckResult {
	name := "cloud fallback"
	if s.config.OpenAIAPIKey == "" {
		return CheckResult{Name: name, Status: CheckSkipped, Message: "no API key configured"}
	}
	return CheckResult{Name: name, Status: CheckPassed, Message: "API key present"}
}

// checkHistoryRoot verifies the history directory can be created and written.
func (s *StartupChecks) checkHistoryRoot() CheckResult {
	name := "history directory"
	root := s.config.HistoryRoot

	if err := os.MkdirAll(root, 0o755); err != nil {
		return CheckResult{Name: name, Status: CheckFailed, Error: fmt.Errorf("creating %s: %w", root, err)}
	}
	probe := filepath.Join(root, ".write-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return CheckResult{Name: name, Status: CheckFailed, Error: fmt.Errorf("%s is not writable: %w", root, err)}
	}
	os.Remove(probe)
	return CheckResult{Name: name, Status: CheckPassed, Message: root}
}

func (s *StartupChecks) printHeader(title string) {
	fmt.Fprintln(s.output)
	color.New(color.FgCyan, color.Bold).Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

func (s *StartupChecks) printCheck(cr CheckResult) {
	var icon string
	var clr *color.Color

	switch cr.Status {
	case CheckPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case CheckFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case CheckWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	default:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	}

	clr.Fprintf(s.output, "  %s %s", icon, cr.Name)
	if cr.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", cr.Message)
	}
	fmt.Fprintln(s.output)

	if cr.Status == CheckFailed && cr.Error != nil {
		color.New(color.FgRed).Fprintf(s.output, "    └─ %s\n", cr.Error.Error())
	}
}

func (s *StartupChecks) printSummary(result ChecksResult) {
	fmt.Fprintln(s.output)
	if result.Success {
		color.New(color.FgGreen, color.Bold).Fprintf(s.output, "━━━ Checks Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed in %v)",
			result.Passed, result.Duration.Round(time.Millisecond))
		color.New(color.FgGreen, color.Bold).Fprintln(s.output, " ━━━")
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(s.output, "━━━ Checks Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.Passed, result.Failed)
		color.New(color.FgRed, color.Bold).Fprintln(s.output, " ━━━")
	}
	fmt.Fprintln(s.output)
}

// Errors returns all errors from failed checks.
func (r ChecksResult) Errors() []error {
	var errs []error
	for _, c := range r.Checks {
		if c.Status == CheckFailed && c.Error != nil {
			errs = append(errs, c.Error)
		}
	}
	return errs
}
