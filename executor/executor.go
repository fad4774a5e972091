// Package executor turns a request configuration plus an opaque engine into
// an (image, metadata) pair. It owns the normalization and seed discipline
// shared by the generation paths: engines always receive normalized
// dimensions and a concrete seed, and the metadata records exactly what the
// engine was given.
package executor

import (
	"context"
	"image"
	"time"

	"sdstudio/engine"
	"sdstudio/sdgen"

	"go.uber.org/zap"
)

// Executor runs generation requests against pipelines. It performs no
// retries: one inference attempt per call, and engine failures propagate to
// the caller unmodified.
type Executor struct {
	log *zap.Logger
}

// New returns an Executor logging through the given logger.
func New(log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{log: log}
}

// Txt2Img generates an image from text. A nil cfg.Seed is replaced with a
// fresh random seed, which is recorded in the returned metadata so the
// generation can be reproduced.
func (e *Executor) Txt2Img(ctx context.Context, pipe engine.TextToImage, cfg sdgen.Txt2ImgConfig) (image.Image, *sdgen.GenerationMetadata, error) {
	width, height := sdgen.NormalizeResolution(cfg.Width, cfg.Height)
	seed := resolveSeed(cfg.Seed)

	e.log.Info("txt2img",
		zap.String("prompt", sdgen.ShortPrompt(cfg.Prompt, 60)),
		zap.Int("steps", cfg.Steps),
		zap.Float64("cfg", cfg.GuidanceScale),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Uint64("seed", seed),
	)

	start := time.Now()
	img, err := pipe.Generate(ctx, engine.Params{
		Prompt:         cfg.Prompt,
		NegativePrompt: cfg.NegativePrompt,
		Steps:          cfg.Steps,
		GuidanceScale:  cfg.GuidanceScale,
		Width:          width,
		Height:         height,
		Seed:           seed,
	})
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start).Seconds()

	meta := &sdgen.GenerationMetadata{
		Mode:           sdgen.ModeTxt2Img,
		Prompt:         cfg.Prompt,
		NegativePrompt: cfg.NegativePrompt,
		Steps:          cfg.Steps,
		GuidanceScale:  cfg.GuidanceScale,
		Width:          width,
		Height:         height,
		Seed:           &seed,
		Model:          cfg.Model,
		ElapsedSeconds: elapsed,
	}
	return img, meta, nil
}

// Img2Img generates an image from a source image plus text. The strength is
// validated before any inference; the source is coerced to RGB and resampled
// to the normalized target dimensions before being handed to the engine.
func (e *Executor) Img2Img(ctx context.Context, pipe engine.ImageToImage, cfg sdgen.Img2ImgConfig, src image.Image) (image.Image, *sdgen.GenerationMetadata, error) {
	if err := sdgen.ValidateStrength(cfg.Strength); err != nil {
		return nil, nil, err
	}

	width, height := sdgen.NormalizeResolution(cfg.Width, cfg.Height)
	seed := resolveSeed(cfg.Seed)
	init := sdgen.Resample(sdgen.ToRGB(src), width, height)

	e.log.Info("img2img",
		zap.String("prompt", sdgen.ShortPrompt(cfg.Prompt, 60)),
		zap.Int("steps", cfg.Steps),
		zap.Float64("cfg", cfg.GuidanceScale),
		zap.Float64("strength", cfg.Strength),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Uint64("seed", seed),
	)

	start := time.Now()
	img, err := pipe.GenerateFrom(ctx, engine.Img2ImgParams{
		Params: engine.Params{
			Prompt:         cfg.Prompt,
			NegativePrompt: cfg.NegativePrompt,
			Steps:          cfg.Steps,
			GuidanceScale:  cfg.GuidanceScale,
			Width:          width,
			Height:         height,
			Seed:           seed,
		},
		Init:     init,
		Strength: cfg.Strength,
	})
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start).Seconds()

	strength := cfg.Strength
	meta := &sdgen.GenerationMetadata{
		Mode:           sdgen.ModeImg2Img,
		Prompt:         cfg.Prompt,
		NegativePrompt: cfg.NegativePrompt,
		Steps:          cfg.Steps,
		GuidanceScale:  cfg.GuidanceScale,
		Width:          width,
		Height:         height,
		Seed:           &seed,
		Strength:       &strength,
		Model:          cfg.Model,
		ElapsedSeconds: elapsed,
	}
	return img, meta, nil
}

// Upscale runs super-resolution on a source image and records the original
// and final dimensions.
func (e *Executor) Upscale(ctx context.Context, up engine.Upscaler, src image.Image) (image.Image, *sdgen.GenerationMetadata, error) {
	srcBounds := src.Bounds()

	e.log.Info("upscale",
		zap.Int("scale", up.Scale()),
		zap.Int("width", srcBounds.Dx()),
		zap.Int("height", srcBounds.Dy()),
	)

	start := time.Now()
	img, err := up.Upscale(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start).Seconds()

	outBounds := img.Bounds()
	meta := &sdgen.GenerationMetadata{
		Mode:           sdgen.ModeUpscale,
		Scale:          up.Scale(),
		OriginalWidth:  srcBounds.Dx(),
		OriginalHeight: srcBounds.Dy(),
		Width:          outBounds.Dx(),
		Height:         outBounds.Dy(),
		ElapsedSeconds: elapsed,
	}
	return img, meta, nil
}

func resolveSeed(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return sdgen.RandomSeed()
}
