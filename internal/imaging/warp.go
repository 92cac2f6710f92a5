package imaging

import (
	"image"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PatchTransform returns the 3×3 homogeneous matrix mapping patch pixel
// coordinates to source pixel coordinates for a width×height patch centred
// on (cx, cy) and rotated by angle degrees.
//
// With v_x = (cos θ, sin θ) and v_y = (-sin θ, cos θ), patch pixel (u, v)
// samples the source at origin + u·v_x + v·v_y, where
// origin = centre - v_x·width/2 - v_y·height/2.
func PatchTransform(cx, cy, width, height, angle float64) *mat.Dense {
	theta := angle * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	rotate := mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})
	// Shift so the patch centre lands on the origin before rotating.
	centre := mat.NewDense(3, 3, []float64{
		1, 0, -width / 2,
		0, 1, -height / 2,
		0, 0, 1,
	})
	place := mat.NewDense(3, 3, []float64{
		1, 0, cx,
		0, 1, cy,
		0, 0, 1,
	})

	var m mat.Dense
	m.Product(place, rotate, centre)
	return &m
}

// SamplePatch extracts a width×height patch from src through the affine map
// m (patch coordinates to source coordinates, as built by PatchTransform).
// Sampling is bilinear; coordinates outside src repeat the nearest edge
// pixel. A non-positive width or height yields nil.
func SamplePatch(src image.Image, m mat.Matrix, width, height int) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return nil
	}

	sb := src.Bounds()
	in := image.NewNRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(in, in.Bounds(), src, sb.Min, draw.Src)

	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for v := 0; v < height; v++ {
		for u := 0; u < width; u++ {
			sx := a*float64(u) + b*float64(v) + c
			sy := d*float64(u) + e*float64(v) + f
			i := dst.PixOffset(u, v)
			bilinear(in, sx, sy, dst.Pix[i:i+4])
		}
	}
	return dst
}

// bilinear writes the interpolated NRGBA value of img at (x, y) into out,
// replicating edge pixels for coordinates outside the image.
func bilinear(img *image.NRGBA, x, y float64, out []uint8) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	xa, xb := clamp(x0, 0, w-1), clamp(x0+1, 0, w-1)
	ya, yb := clamp(y0, 0, h-1), clamp(y0+1, 0, h-1)

	p00 := img.Pix[img.PixOffset(xa, ya):]
	p10 := img.Pix[img.PixOffset(xb, ya):]
	p01 := img.Pix[img.PixOffset(xa, yb):]
	p11 := img.Pix[img.PixOffset(xb, yb):]

	for ch := 0; ch < 4; ch++ {
		top := float64(p00[ch])*(1-fx) + float64(p10[ch])*fx
		bot := float64(p01[ch])*(1-fx) + float64(p11[ch])*fx
		val := top*(1-fy) + bot*fy
		out[ch] = uint8(clamp(int(math.Round(val)), 0, 255))
	}
}
