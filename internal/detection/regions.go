package detection

import (
	"errors"
	"image"
	"math"

	"github.com/ironsheep/chartmask/internal/geometry"
	"github.com/ironsheep/chartmask/internal/imaging"
)

// Default extraction parameters.
const (
	DefaultInflate       = 1.1
	DefaultSnapTolerance = 5.0
	DefaultMinPixels     = 1
)

// snapTargets are the reference angles a region may snap to.
var snapTargets = []float64{-360, -270, -180, -90, 0, 90, 180, 270, 360}

// ErrEmptySource is returned when the source image has no pixels.
var ErrEmptySource = errors.New("source image is empty")

// Options control region extraction. Zero values select the defaults.
type Options struct {
	// Inflate multiplies both region dimensions.
	Inflate float64

	// SnapTolerance is the maximum distance in degrees from a reference
	// angle for snapping. A negative value disables snapping.
	SnapTolerance float64

	// MinPixels drops components with fewer pixels.
	MinPixels int
}

func (o Options) withDefaults() Options {
	if o.Inflate <= 0 {
		o.Inflate = DefaultInflate
	}
	if o.SnapTolerance == 0 {
		o.SnapTolerance = DefaultSnapTolerance
	}
	if o.MinPixels <= 0 {
		o.MinPixels = DefaultMinPixels
	}
	return o
}

// Patch pairs a detected region with its axis-aligned image patch.
type Patch struct {
	Region geometry.RotatedRect
	Image  *image.NRGBA
}

// SnapAngle returns the reference angle in {-360, -270, ..., 360} closest to
// angle when it lies within tol degrees of it, and angle otherwise.
func SnapAngle(angle, tol float64) float64 {
	if tol < 0 {
		return angle
	}
	for _, ref := range snapTargets {
		if math.Abs(angle-ref) <= tol {
			return ref
		}
	}
	return angle
}

// FindRegions thresholds predicted at threshold (pixels at or above it are
// foreground) and returns one inflated, angle-snapped rotated rectangle per
// connected component in discovery order. Components whose rectangle has
// no area are skipped.
func FindRegions(predicted image.Image, threshold uint8, opts Options) []geometry.RotatedRect {
	opts = opts.withDefaults()
	bin := imaging.Binarize(predicted, threshold)

	components := FindComponents(bin, opts.MinPixels)
	regions := make([]geometry.RotatedRect, 0, len(components))
	for _, c := range components {
		r := geometry.MinAreaRect(c.HullPoints())
		if r.Degenerate() {
			continue
		}
		r = r.Inflate(opts.Inflate)
		r.Angle = SnapAngle(r.Angle, opts.SnapTolerance)
		regions = append(regions, r)
	}
	return regions
}

// ExtractRegions finds the regions of predicted and samples a de-rotated
// patch of source for each. When the mask and the source differ in size,
// the mask is resized to the source first. Regions whose patch would be
// smaller than one pixel in either dimension are skipped.
func ExtractRegions(predicted, source image.Image, threshold uint8, opts Options) ([]Patch, error) {
	sb := source.Bounds()
	if sb.Empty() {
		return nil, ErrEmptySource
	}

	gray := imaging.ToGray(predicted)
	if !imaging.SameSize(gray, source) {
		gray = imaging.ResizeGray(gray, sb.Dx(), sb.Dy())
	}

	regions := FindRegions(gray, threshold, opts)
	patches := make([]Patch, 0, len(regions))
	for _, r := range regions {
		img := Unwarp(source, r)
		if img == nil {
			continue
		}
		patches = append(patches, Patch{Region: r, Image: img})
	}
	return patches, nil
}

// Unwarp samples region r of src as an axis-aligned int(w)×int(h) patch,
// rotating by -r.Angle. It returns nil for regions narrower than a pixel.
func Unwarp(src image.Image, r geometry.RotatedRect) *image.NRGBA {
	w, h := int(r.Width), int(r.Height)
	if w <= 0 || h <= 0 {
		return nil
	}
	m := imaging.PatchTransform(r.Center.X, r.Center.Y, r.Width, r.Height, r.Angle)
	return imaging.SamplePatch(src, m, w, h)
}
