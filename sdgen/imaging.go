package sdgen

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToRGB re-draws an image onto an opaque RGBA canvas, discarding any alpha
// channel. Engines expect a plain 3-channel color image as input.
func ToRGB(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	// Composite over black so transparent regions become defined color.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)

	// Force full opacity; Over keeps source alpha otherwise.
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xFF
	}

	return dst
}

// Resample scales an image to exactly width x height using high-quality
// CatmullRom resampling.
func Resample(src image.Image, width, height int) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
