package sdgen

import (
	"image"
	"image/color"
	"testing"
)

func TestToRGB_DiscardsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
		}
	}

	got := ToRGB(src)
	if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 4 {
		t.Fatalf("unexpected bounds: %v", got.Bounds())
	}
	for i := 3; i < len(got.Pix); i += 4 {
		if got.Pix[i] != 0xFF {
			t.Fatalf("pixel %d not opaque: alpha=%d", i/4, got.Pix[i])
		}
	}
}

func TestToRGB_NormalizesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	got := ToRGB(src)
	if got.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds should start at origin, got %v", got.Bounds())
	}
	if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 2 {
		t.Errorf("unexpected size: %v", got.Bounds())
	}
}

func TestResample(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 60))
	got := Resample(src, 448, 256)
	if got.Bounds().Dx() != 448 || got.Bounds().Dy() != 256 {
		t.Errorf("Resample dimensions = %dx%d, want 448x256", got.Bounds().Dx(), got.Bounds().Dy())
	}
}

func TestResample_MinimumOnePixel(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	got := Resample(src, 0, -5)
	if got.Bounds().Dx() != 1 || got.Bounds().Dy() != 1 {
		t.Errorf("expected 1x1 fallback, got %v", got.Bounds())
	}
}
