// Package mask rasterizes the text boxes of a figure into a binary label
// image aligned with the rendered chart bitmap.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/geometry"
	"github.com/ironsheep/chartmask/internal/imaging"
)

// ErrEmptyLabel is returned by Generate for figures without text boxes. No
// mask should be persisted for such figures.
var ErrEmptyLabel = errors.New("figure has no text boxes")

// Default generation parameters.
const (
	DefaultFactor     = 1.0
	DefaultKernelSize = 4
	DefaultIterations = 1
)

// Options control mask generation. Zero values select the defaults.
type Options struct {
	// Factor is the rendering scale relative to the extractor's coordinate
	// space, e.g. 2 for a bitmap rendered at twice the base DPI.
	Factor float64

	// KernelSize is the side of the square dilation kernel.
	KernelSize int

	// Iterations is the number of dilation passes. Use a negative value to
	// disable dilation.
	Iterations int
}

func (o Options) withDefaults() Options {
	if o.Factor <= 0 {
		o.Factor = DefaultFactor
	}
	if o.KernelSize <= 0 {
		o.KernelSize = DefaultKernelSize
	}
	switch {
	case o.Iterations == 0:
		o.Iterations = DefaultIterations
	case o.Iterations < 0:
		o.Iterations = 0
	}
	return o
}

// Mask is a binary label image: 255 marks text, 0 everything else.
type Mask struct {
	img *image.Gray
}

// Image returns the underlying gray image. Callers must not modify it.
func (m *Mask) Image() *image.Gray { return m.img }

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.img.Bounds().Dx() }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.img.Bounds().Dy() }

// Count returns the number of foreground pixels.
func (m *Mask) Count() int64 { return imaging.CountNonZero(m.img) }

// Save writes the mask to path as PNG.
func (m *Mask) Save(path string) error {
	return imaging.SavePNG(path, m.img)
}

// SizeFor returns the chart bitmap size implied by the figure's own bounding
// box at the given factor. Dimensions are truncated toward zero.
func SizeFor(fig figure.Figure, factor float64) (width, height int) {
	if factor <= 0 {
		factor = DefaultFactor
	}
	bb := fig.ImageBB.Scale(factor)
	return int(bb.Width()), int(bb.Height())
}

// Generate builds the label mask for fig on a width×height canvas.
//
// Each text box is scaled by the factor, moved into mask-local space by
// subtracting the scaled figure origin, and filled from its floored low
// corner to its ceiled high corner inclusive. The result is then dilated.
// Boxes partly or wholly outside the canvas are clipped.
func Generate(fig figure.Figure, width, height int, opts Options) (*Mask, error) {
	if len(fig.ImageText) == 0 {
		return nil, ErrEmptyLabel
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask size %dx%d", width, height)
	}
	opts = opts.withDefaults()

	origin := fig.ImageBB.Scale(opts.Factor)
	canvas := image.NewGray(image.Rect(0, 0, width, height))

	for _, tb := range fig.ImageText {
		r := tb.TextBB.Scale(opts.Factor).Translate(-origin.X0, -origin.Y0)
		fill(canvas, pixelRect(r))
	}

	out, err := imaging.Dilate(canvas, opts.KernelSize, opts.Iterations)
	if err != nil {
		return nil, fmt.Errorf("failed to dilate mask: %w", err)
	}
	return &Mask{img: out}, nil
}

// pixelRect converts a mask-space rectangle to the half-open pixel rectangle
// covering floor(x0)..ceil(x1) inclusive.
func pixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X0)),
		int(math.Floor(r.Y0)),
		int(math.Ceil(r.X1))+1,
		int(math.Ceil(r.Y1))+1,
	)
}

func fill(g *image.Gray, r image.Rectangle) {
	r = r.Intersect(g.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}
