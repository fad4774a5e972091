// Package engine defines the narrow boundary into the external inference
// engines: text-to-image and image-to-image diffusion pipelines and the
// super-resolution upscaler. The studio depends on these interfaces only;
// production backends shell out to pretrained-model runtimes, and tests
// substitute deterministic fakes.
package engine

import (
	"context"
	"image"
)

// Params holds the fully resolved parameters handed to a diffusion pipeline.
// By the time an engine sees them, dimensions are normalized and the seed is
// concrete (never "random").
type Params struct {
	Prompt         string
	NegativePrompt string
	Steps          int
	GuidanceScale  float64
	Width          int
	Height         int
	Seed           uint64
}

// Img2ImgParams extends Params with the source image and blend strength.
// Init is expected to already be resampled to Width x Height.
type Img2ImgParams struct {
	Params
	Init     image.Image
	Strength float64
}

// TextToImage is a pipeline capable of text-to-image generation.
type TextToImage interface {
	Generate(ctx context.Context, p Params) (image.Image, error)
}

// ImageToImage is a pipeline capable of image-to-image generation.
type ImageToImage interface {
	GenerateFrom(ctx context.Context, p Img2ImgParams) (image.Image, error)
}

// Upscaler performs super-resolution on a single image at a fixed scale.
type Upscaler interface {
	Upscale(ctx context.Context, img image.Image) (image.Image, error)
	Scale() int
}
