package imaging

import (
	"image"
	"image/color"
	"testing"
)

func singlePixel(w, h, x, y int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	g.SetGray(x, y, color.Gray{Y: 255})
	return g
}

func TestDilate(t *testing.T) {
	tests := []struct {
		name       string
		src        *image.Gray
		size, iter int
		wantCount  int64
		wantRect   image.Rectangle
	}{
		{"4x4 once", singlePixel(12, 12, 5, 5), 4, 1, 16, image.Rect(4, 4, 8, 8)},
		{"3x3 three times", singlePixel(12, 12, 5, 5), 3, 3, 49, image.Rect(2, 2, 9, 9)},
		{"3x3 at corner", singlePixel(12, 12, 0, 0), 3, 1, 4, image.Rect(0, 0, 2, 2)},
		{"size 1 is identity", singlePixel(6, 6, 2, 3), 1, 5, 1, image.Rect(2, 3, 3, 4)},
		{"zero iterations", singlePixel(6, 6, 2, 3), 4, 0, 1, image.Rect(2, 3, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Dilate(tt.src, tt.size, tt.iter)
			if err != nil {
				t.Fatalf("Dilate failed: %v", err)
			}
			if got := CountNonZero(out); got != tt.wantCount {
				t.Errorf("count = %d, want %d", got, tt.wantCount)
			}
			for y := tt.wantRect.Min.Y; y < tt.wantRect.Max.Y; y++ {
				for x := tt.wantRect.Min.X; x < tt.wantRect.Max.X; x++ {
					if out.GrayAt(x, y).Y != 255 {
						t.Fatalf("pixel (%d,%d) not set", x, y)
					}
				}
			}
		})
	}
}

func TestDilate_DoesNotModifyInput(t *testing.T) {
	src := singlePixel(8, 8, 4, 4)
	if _, err := Dilate(src, 3, 2); err != nil {
		t.Fatal(err)
	}
	if CountNonZero(src) != 1 {
		t.Error("input image was modified")
	}
}

func TestDilate_Monotone(t *testing.T) {
	src := grayFromRows(
		[]uint8{0, 0, 0, 0, 0, 0},
		[]uint8{0, 255, 0, 0, 0, 0},
		[]uint8{0, 0, 0, 0, 255, 0},
		[]uint8{0, 0, 0, 0, 0, 0},
	)
	out, err := Dilate(src, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if CountAndNot(src, out) != 0 {
		t.Error("dilation removed foreground pixels")
	}
}

func TestDilate_InvalidArgs(t *testing.T) {
	src := singlePixel(4, 4, 1, 1)
	if _, err := Dilate(src, 0, 1); err == nil {
		t.Error("expected error for zero kernel size")
	}
	if _, err := Dilate(src, 3, -1); err == nil {
		t.Error("expected error for negative iterations")
	}
}
