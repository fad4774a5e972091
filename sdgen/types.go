// Package sdgen defines the parameter and metadata model shared by the
// generation paths: request configurations, the per-entry metadata record,
// and the pure normalization atoms that snap requests onto the grid a
// Stable Diffusion pipeline actually supports.
package sdgen

// Mode identifies which generation path produced a history entry.
type Mode string

// Generation modes.
const (
	ModeTxt2Img Mode = "txt2img"
	ModeImg2Img Mode = "img2img"
	ModeUpscale Mode = "upscale"
)

// Txt2ImgConfig holds the caller-supplied parameters for a text-to-image
// request. Width and Height may be any integers; they are normalized before
// the engine is invoked. A nil Seed requests a fresh random seed.
type Txt2ImgConfig struct {
	Prompt         string
	NegativePrompt string
	Steps          int
	GuidanceScale  float64
	Width          int
	Height         int
	Seed           *uint64
	Model          string // named pipeline to use; empty selects the default
}

// Img2ImgConfig holds the caller-supplied parameters for an image-to-image
// request. Strength must be in (0, 1] and is validated before any inference.
type Img2ImgConfig struct {
	Prompt         string
	NegativePrompt string
	Strength       float64
	Steps          int
	GuidanceScale  float64
	Width          int
	Height         int
	Seed           *uint64
	Model          string
}

// GenerationMetadata is the immutable-after-creation record written for every
// generation event. The executor fills the generation fields; the history
// store assigns ID, Timestamp, and the image paths at save time.
//
// Optional fields are pointers (or omitempty scalars) so the serialized JSON
// carries only the fields that apply to the entry's mode.
type GenerationMetadata struct {
	Mode Mode `json:"mode"`

	// Txt2Img / Img2Img
	Prompt         string  `json:"prompt,omitempty"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	GuidanceScale  float64 `json:"guidance_scale,omitempty"`
	Seed           *uint64 `json:"seed,omitempty"`
	Model          string  `json:"model,omitempty"`

	// Img2Img only
	Strength *float64 `json:"strength,omitempty"`

	// Upscale only
	Scale          int `json:"scale,omitempty"`
	OriginalWidth  int `json:"original_width,omitempty"`
	OriginalHeight int `json:"original_height,omitempty"`

	// Shared
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Timestamp      string  `json:"timestamp,omitempty"`
	ID             string  `json:"id,omitempty"`
	Thumbnail      string  `json:"thumbnail,omitempty"`
	FullImage      string  `json:"full_image,omitempty"`
}

// Summary projects the metadata down to the compact row kept in the history
// index. The full entry remains the source of truth; a summary is always
// derivable from it, never the other way around.
func (m *GenerationMetadata) Summary() HistorySummary {
	return HistorySummary{
		ID:        m.ID,
		Prompt:    m.Prompt,
		Mode:      m.Mode,
		Seed:      m.Seed,
		Width:     m.Width,
		Height:    m.Height,
		Timestamp: m.Timestamp,
		Thumbnail: m.Thumbnail,
	}
}

// HistorySummary is the minimal entry used for history listings.
type HistorySummary struct {
	ID        string  `json:"id"`
	Prompt    string  `json:"prompt"`
	Mode      Mode    `json:"mode"`
	Seed      *uint64 `json:"seed,omitempty"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Timestamp string  `json:"timestamp"`
	Thumbnail string  `json:"thumbnail"`
}
