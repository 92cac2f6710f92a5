package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestParseTint(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"", color.RGBA{255, 255, 0, 255}, false},
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#00ff80", color.RGBA{0, 255, 128, 255}, false},
		{"red", color.RGBA{}, true},
		{"#12", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTint(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTintMask(t *testing.T) {
	mask := grayFromRows([]uint8{0, 255})
	out := TintMask(mask, color.RGBA{255, 255, 0, 255})

	if got := out.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("background = %v, want black", got)
	}
	if got := out.RGBAAt(1, 0); got != (color.RGBA{255, 255, 0, 255}) {
		t.Errorf("foreground = %v, want tint", got)
	}
}

func TestDebugComposite(t *testing.T) {
	chart := createInMemoryImage(4, 2, color.RGBA{200, 200, 200, 255})
	mask := grayFromRows(
		[]uint8{0, 0, 255, 255},
		[]uint8{0, 0, 255, 255},
	)

	out := DebugComposite(chart, mask, color.RGBA{255, 255, 0, 255})
	if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 2 {
		t.Fatalf("size = %v, want 4x2", out.Bounds())
	}

	plain := out.RGBAAt(0, 0)
	if diff(plain.R, 200) > 2 || diff(plain.B, 200) > 2 {
		t.Errorf("unlabelled pixel = %v, want about gray 200", plain)
	}

	// Red and green are subtracted to zero, blue keeps the chart value.
	marked := out.RGBAAt(3, 1)
	if diff(marked.R, 130) > 2 || diff(marked.G, 130) > 2 {
		t.Errorf("labelled pixel = %v, want red/green near 130", marked)
	}
	if diff(marked.B, 200) > 2 {
		t.Errorf("labelled pixel blue = %d, want about 200", marked.B)
	}
}

func TestDebugComposite_ResizesMask(t *testing.T) {
	chart := image.NewGray(image.Rect(0, 0, 8, 8))
	mask := image.NewGray(image.Rect(0, 0, 4, 4))

	out := DebugComposite(chart, mask, color.RGBA{255, 0, 0, 255})
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 8 {
		t.Errorf("size = %v, want 8x8", out.Bounds())
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
