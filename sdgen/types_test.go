package sdgen

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerationMetadata_JSONOmitsAbsentOptionals(t *testing.T) {
	seed := uint64(99)
	meta := GenerationMetadata{
		Mode:          ModeTxt2Img,
		Prompt:        "a red cube",
		Steps:         20,
		GuidanceScale: 7.5,
		Width:         512,
		Height:        512,
		Seed:          &seed,
	}

	data, err := json.Marshal(&meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	doc := string(data)
	for _, absent := range []string{"strength", "scale", "original_width", "thumbnail", "full_image"} {
		if strings.Contains(doc, absent) {
			t.Errorf("serialized txt2img entry should omit %q: %s", absent, doc)
		}
	}
	if !strings.Contains(doc, `"seed":99`) {
		t.Errorf("seed missing from document: %s", doc)
	}
}

func TestGenerationMetadata_Summary(t *testing.T) {
	seed := uint64(7)
	strength := 0.6
	meta := GenerationMetadata{
		Mode:      ModeImg2Img,
		Prompt:    "watercolor village",
		Seed:      &seed,
		Strength:  &strength,
		Width:     448,
		Height:    256,
		Timestamp: "2026-08-28T10:00:00Z",
		ID:        "abc",
		Thumbnail: "/history/thumbnails/abc.png",
		FullImage: "/history/full/abc.png",
	}

	sum := meta.Summary()
	if sum.ID != meta.ID || sum.Prompt != meta.Prompt || sum.Mode != meta.Mode {
		t.Errorf("summary identity fields mismatch: %+v", sum)
	}
	if sum.Seed == nil || *sum.Seed != seed {
		t.Errorf("summary seed mismatch: %+v", sum.Seed)
	}
	if sum.Width != 448 || sum.Height != 256 {
		t.Errorf("summary dimensions mismatch: %+v", sum)
	}
	if sum.Thumbnail != meta.Thumbnail || sum.Timestamp != meta.Timestamp {
		t.Errorf("summary path/time mismatch: %+v", sum)
	}
}
