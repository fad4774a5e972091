package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEngine is a cloud fallback pipeline backed by the OpenAI Images API.
// It implements TextToImage only; img2img and upscaling stay local.
//
// The API accepts a fixed set of square sizes, so the requested resolution is
// mapped to the nearest supported size. The studio still records the
// dimensions of the returned image.
type OpenAIEngine struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIEngine creates a pipeline against the OpenAI Images API.
// baseURL and model may be empty to use the service defaults.
func NewOpenAIEngine(apiKey, baseURL, model string, log *zap.Logger) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("engine: OpenAI API key is required for the cloud pipeline")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIEngine{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		log:    log,
	}, nil
}

// Generate requests a single image and decodes the base64 PNG payload.
// Steps, guidance scale, and seed have no API equivalent and are ignored by
// this backend; the caller's metadata still records what was requested.
func (e *OpenAIEngine) Generate(ctx context.Context, params Params) (image.Image, error) {
	resp, err := e.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         params.Prompt,
		Model:          e.model,
		N:              1,
		Size:           apiSizeFor(params.Width, params.Height),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeOutput, err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeOutput, err)
	}

	e.log.Debug("cloud pipeline returned image",
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return img, nil
}

// apiSizeFor maps a normalized resolution onto the closest square size the
// Images API supports.
func apiSizeFor(width, height int) string {
	longest := width
	if height > longest {
		longest = height
	}

	switch {
	case longest <= 256:
		return openai.CreateImageSize256x256
	case longest <= 512:
		return openai.CreateImageSize512x512
	default:
		return openai.CreateImageSize1024x1024
	}
}
