package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blend"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultTint is the colour label pixels are painted with in debug
// composites.
const DefaultTint = "#FFFF00"

// Composite weights.
const (
	chartWeight = 0.65
	labelWeight = 1 - chartWeight
)

// ParseTint parses a "#RRGGBB" colour. An empty string selects DefaultTint.
func ParseTint(hex string) (color.RGBA, error) {
	if hex == "" {
		hex = DefaultTint
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid tint color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// TintMask paints every foreground pixel of mask with tint and leaves the
// rest black.
func TintMask(mask *image.Gray, tint color.RGBA) *image.RGBA {
	mask = ToGray(mask)
	dst := image.NewRGBA(mask.Bounds())
	b := mask.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask.GrayAt(x, y).Y == 0 {
				dst.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}
			dst.SetRGBA(x, y, tint)
		}
	}
	return dst
}

// DebugComposite overlays a label mask on its chart so mislabelled text is
// easy to spot: the tinted mask is subtracted from the gray chart and the
// result blended back as chart*0.65 + difference*0.35.
//
// The chart is converted to gray first. If the mask size differs from the
// chart, the mask is resized to match.
func DebugComposite(chart image.Image, mask *image.Gray, tint color.RGBA) *image.RGBA {
	gray := ToGray(chart)
	mask = ToGray(mask)
	if !SameSize(gray, mask) {
		mask = ResizeGray(mask, gray.Bounds().Dx(), gray.Bounds().Dy())
	}

	label := TintMask(mask, tint)
	diff := blend.Subtract(label, gray)
	return blend.Opacity(gray, diff, labelWeight)
}
