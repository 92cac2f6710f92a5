package imaging

import (
	"fmt"
	"image"
)

// Dilate applies a size×size all-ones dilation to g, repeated iterations
// times, and returns a new image. g itself is never modified.
//
// The kernel anchor is (size/2, size/2), so for an even size the kernel
// reaches one pixel further right and down than left and up: with size 4 a
// foreground pixel at x spreads to x-1 .. x+2. Samples outside the image are
// ignored.
//
// The structuring element is separable, so each iteration runs as one
// horizontal and one vertical running-max pass.
func Dilate(g *image.Gray, size, iterations int) (*image.Gray, error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid kernel size %d", size)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("invalid iteration count %d", iterations)
	}

	src := cloneGray(g)
	if size == 1 || iterations == 0 {
		return src, nil
	}

	anchor := size / 2
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := image.NewGray(src.Bounds())

	for it := 0; it < iterations; it++ {
		// Output (x,y) takes the max of inputs x-anchor .. x-anchor+size-1.
		for y := 0; y < h; y++ {
			in := src.Pix[y*src.Stride : y*src.Stride+w]
			out := tmp.Pix[y*tmp.Stride : y*tmp.Stride+w]
			for x := 0; x < w; x++ {
				out[x] = maxRun(in, x-anchor, x-anchor+size-1)
			}
		}
		col := make([]uint8, h)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = tmp.Pix[y*tmp.Stride+x]
			}
			for y := 0; y < h; y++ {
				src.Pix[y*src.Stride+x] = maxRun(col, y-anchor, y-anchor+size-1)
			}
		}
	}
	return src, nil
}

// maxRun returns the maximum of s[lo..hi], ignoring indices outside s.
func maxRun(s []uint8, lo, hi int) uint8 {
	lo = clamp(lo, 0, len(s)-1)
	hi = clamp(hi, 0, len(s)-1)
	var m uint8
	for i := lo; i <= hi; i++ {
		if s[i] > m {
			m = s[i]
			if m == 255 {
				break
			}
		}
	}
	return m
}

func cloneGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return dst
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
