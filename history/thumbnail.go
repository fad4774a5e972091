package history

import (
	"image"

	"golang.org/x/image/draw"
)

// ThumbnailMaxEdge bounds the longest edge of generated thumbnails.
const ThumbnailMaxEdge = 256

// thumbnailOf returns an isotropic downscale of src whose longest edge is at
// most maxEdge, preserving aspect ratio with CatmullRom resampling. Images
// already within bounds are returned unchanged.
func thumbnailOf(src image.Image, maxEdge int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxEdge || longest == 0 {
		return src
	}

	scale := float64(maxEdge) / float64(longest)
	thumbW := int(float64(width) * scale)
	thumbH := int(float64(height) * scale)
	if thumbW < 1 {
		thumbW = 1
	}
	if thumbH < 1 {
		thumbH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, thumbW, thumbH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
