package engine

import "errors"

// Sentinel errors for engine operations. Wrapped with context at the point
// of failure; check with errors.Is.
var (
	// Model/backend errors
	ErrModelNotFound  = errors.New("engine: model file not found")
	ErrBinaryNotFound = errors.New("engine: backend binary not found")
	ErrUpscalerInit   = errors.New("engine: failed to initialize upscaler")

	// Generation errors
	ErrGenerationFailed = errors.New("engine: image generation failed")
	ErrUpscaleFailed    = errors.New("engine: image upscale failed")
	ErrDecodeOutput     = errors.New("engine: failed to decode engine output")

	// Input errors
	ErrInvalidScale = errors.New("engine: upscale factor must be 2 or 4")

	// Registry errors
	ErrUnknownPipeline = errors.New("engine: unknown pipeline")
)
