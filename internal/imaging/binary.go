package imaging

import "image"

// Binarize returns a binary image where pixels whose intensity is at least
// level become 255 and all others 0. Non-gray inputs are converted with
// ToGray first.
func Binarize(img image.Image, level uint8) *image.Gray {
	g := ToGray(img)
	dst := image.NewGray(g.Bounds())
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range src {
			if v >= level {
				out[x] = 255
			}
		}
	}
	return dst
}

// BinarizeAbove is Binarize with a strict comparison: pixels brighter than
// level become foreground. A level of 255 yields an empty image.
func BinarizeAbove(img image.Image, level uint8) *image.Gray {
	if level == 255 {
		b := img.Bounds()
		return image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	return Binarize(img, level+1)
}

// CountNonZero returns the number of non-zero pixels in g.
func CountNonZero(g *image.Gray) int64 {
	var n int64
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y) : g.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// CountAndNot returns the number of pixels set in a but not in b. Both
// images must share dimensions; pixels are compared by offset from their
// respective origins.
func CountAndNot(a, b *image.Gray) int64 {
	return countPairs(a, b, func(x, y uint8) bool { return x != 0 && y == 0 })
}

// CountAnd returns the number of pixels set in both a and b.
func CountAnd(a, b *image.Gray) int64 {
	return countPairs(a, b, func(x, y uint8) bool { return x != 0 && y != 0 })
}

func countPairs(a, b *image.Gray, match func(x, y uint8) bool) int64 {
	ab, bb := a.Bounds(), b.Bounds()
	w, h := min(ab.Dx(), bb.Dx()), min(ab.Dy(), bb.Dy())

	var n int64
	for y := 0; y < h; y++ {
		ra := a.Pix[a.PixOffset(ab.Min.X, ab.Min.Y+y):]
		rb := b.Pix[b.PixOffset(bb.Min.X, bb.Min.Y+y):]
		for x := 0; x < w; x++ {
			if match(ra[x], rb[x]) {
				n++
			}
		}
	}
	return n
}
