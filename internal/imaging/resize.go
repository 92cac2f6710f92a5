package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ResizeGray resamples g to width×height with linear interpolation. When the
// size already matches, g is returned unchanged (rebased to the origin).
func ResizeGray(g *image.Gray, width, height int) *image.Gray {
	g = ToGray(g)
	if g.Bounds().Dx() == width && g.Bounds().Dy() == height {
		return g
	}
	if width <= 0 || height <= 0 {
		return image.NewGray(image.Rect(0, 0, max(width, 0), max(height, 0)))
	}
	return ToGray(imaging.Resize(g, width, height, imaging.Linear))
}

// SameSize reports whether a and b have equal dimensions.
func SameSize(a, b image.Image) bool {
	return a.Bounds().Dx() == b.Bounds().Dx() && a.Bounds().Dy() == b.Bounds().Dy()
}
