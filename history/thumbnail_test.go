package history

import (
	"image"
	"testing"
)

func TestThumbnailOf(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"landscape bound by width", 1024, 512, 256, 128},
		{"portrait bound by height", 512, 1024, 128, 256},
		{"square", 512, 512, 256, 256},
		{"already small untouched", 100, 60, 100, 60},
		{"exactly at bound untouched", 256, 256, 256, 256},
		{"extreme aspect keeps one pixel minimum", 2048, 2, 256, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := thumbnailOf(src, ThumbnailMaxEdge)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("thumbnailOf(%dx%d) = %dx%d, want %dx%d",
					tt.w, tt.h, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnailOf_NeverUpscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if got := thumbnailOf(src, ThumbnailMaxEdge); got != src {
		t.Error("images within bounds should be returned unchanged")
	}
}
