package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSDBinary is the stable-diffusion.cpp CLI binary looked up on PATH
// when no explicit path is configured.
const DefaultSDBinary = "sd"

// SDCppPipeline runs txt2img and img2img through the stable-diffusion.cpp
// command-line runtime. Each invocation is a separate process; the pipeline
// is opaque to the studio beyond its parameter surface.
//
// The underlying runtime is not safe for concurrent use against a single
// GPU, so calls are serialized with a mutex.
type SDCppPipeline struct {
	mu sync.Mutex

	binPath   string
	modelPath string
	device    string
	timeout   time.Duration
	log       *zap.Logger
}

// NewSDCppPipeline validates the backend binary and model file and returns a
// pipeline handle. binPath may be empty to use DefaultSDBinary from PATH.
func NewSDCppPipeline(binPath, modelPath, device string, timeout time.Duration, log *zap.Logger) (*SDCppPipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if binPath == "" {
		binPath = DefaultSDBinary
	}

	resolved, err := exec.LookPath(binPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBinaryNotFound, binPath)
	}

	if modelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModelNotFound)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &SDCppPipeline{
		binPath:   resolved,
		modelPath: modelPath,
		device:    device,
		timeout:   timeout,
		log:       log,
	}, nil
}

// Generate runs a single text-to-image inference.
func (p *SDCppPipeline) Generate(ctx context.Context, params Params) (image.Image, error) {
	return p.run(ctx, params, "", 0)
}

// GenerateFrom runs a single image-to-image inference. The init image is
// written to a temporary PNG handed to the runtime via --init-img.
func (p *SDCppPipeline) GenerateFrom(ctx context.Context, params Img2ImgParams) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	workDir, err := os.MkdirTemp("", "sdstudio-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer os.RemoveAll(workDir)

	initPath := filepath.Join(workDir, "init.png")
	if err := writePNGFile(initPath, params.Init); err != nil {
		return nil, fmt.Errorf("%w: writing init image: %v", ErrGenerationFailed, err)
	}

	return p.invoke(ctx, workDir, params.Params, initPath, params.Strength)
}

// run serializes access and dispatches a txt2img invocation.
func (p *SDCppPipeline) run(ctx context.Context, params Params, initPath string, strength float64) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	workDir, err := os.MkdirTemp("", "sdstudio-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer os.RemoveAll(workDir)

	return p.invoke(ctx, workDir, params, initPath, strength)
}

// invoke builds the CLI argument list, runs the backend, and decodes its
// output PNG. Callers hold the mutex.
func (p *SDCppPipeline) invoke(ctx context.Context, workDir string, params Params, initPath string, strength float64) (image.Image, error) {
	outPath := filepath.Join(workDir, "out.png")

	args := []string{
		"-m", p.modelPath,
		"-p", params.Prompt,
		"-o", outPath,
		"--steps", strconv.Itoa(params.Steps),
		"--cfg-scale", strconv.FormatFloat(params.GuidanceScale, 'f', -1, 64),
		"-W", strconv.Itoa(params.Width),
		"-H", strconv.Itoa(params.Height),
		"-s", strconv.FormatUint(params.Seed, 10),
	}
	if params.NegativePrompt != "" {
		args = append(args, "-n", params.NegativePrompt)
	}
	if initPath != "" {
		args = append(args,
			"--init-img", initPath,
			"--strength", strconv.FormatFloat(strength, 'f', -1, 64),
		)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(runCtx, p.binPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, runCtx.Err())
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrGenerationFailed, err, tailOf(output, 512))
	}

	p.log.Debug("sd backend finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("width", params.Width),
		zap.Int("height", params.Height),
		zap.Uint64("seed", params.Seed),
	)

	return readPNGFile(outPath)
}

func writePNGFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readPNGFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeOutput, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeOutput, err)
	}
	return img, nil
}

// tailOf returns the last n bytes of backend output for error context.
func tailOf(output []byte, n int) string {
	if len(output) > n {
		output = output[len(output)-n:]
	}
	return string(output)
}
