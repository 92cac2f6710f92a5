package mask

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/geometry"
	"github.com/ironsheep/chartmask/internal/imaging"
)

func testFigure(boxes ...geometry.Rect) figure.Figure {
	fig := figure.Figure{Page: 1, ImageBB: geometry.NewRect(10, 20, 110, 70)}
	for _, b := range boxes {
		fig.ImageText = append(fig.ImageText, figure.TextBox{TextBB: b})
	}
	return fig
}

func TestGenerate_EmptyLabel(t *testing.T) {
	_, err := Generate(testFigure(), 100, 50, Options{})
	if !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("expected ErrEmptyLabel, got %v", err)
	}
}

func TestGenerate_InvalidSize(t *testing.T) {
	if _, err := Generate(testFigure(geometry.NewRect(20, 30, 30, 40)), 0, 50, Options{}); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestGenerate(t *testing.T) {
	box := geometry.NewRect(20.3, 30.7, 30.2, 35.1)

	tests := []struct {
		name      string
		opts      Options
		width     int
		height    int
		wantCount int64
		wantSet   []image.Point
		wantClear []image.Point
	}{
		{
			name:      "no dilation",
			opts:      Options{Iterations: -1},
			width:     100,
			height:    50,
			wantCount: 12 * 7,
			wantSet:   []image.Point{{10, 10}, {21, 16}},
			wantClear: []image.Point{{9, 10}, {22, 16}, {10, 17}},
		},
		{
			name:      "default 4x4 dilation",
			opts:      Options{},
			width:     100,
			height:    50,
			wantCount: 15 * 10,
			wantSet:   []image.Point{{9, 9}, {23, 18}},
			wantClear: []image.Point{{8, 9}, {24, 18}, {9, 19}},
		},
		{
			name:      "factor 2 without dilation",
			opts:      Options{Factor: 2, Iterations: -1},
			width:     200,
			height:    100,
			wantCount: 22 * 11,
			wantSet:   []image.Point{{20, 21}, {41, 31}},
			wantClear: []image.Point{{19, 21}, {42, 31}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Generate(testFigure(box), tt.width, tt.height, tt.opts)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if m.Width() != tt.width || m.Height() != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", m.Width(), m.Height(), tt.width, tt.height)
			}
			if got := m.Count(); got != tt.wantCount {
				t.Errorf("Count = %d, want %d", got, tt.wantCount)
			}
			for _, p := range tt.wantSet {
				if m.Image().GrayAt(p.X, p.Y).Y != 255 {
					t.Errorf("pixel %v should be set", p)
				}
			}
			for _, p := range tt.wantClear {
				if m.Image().GrayAt(p.X, p.Y).Y != 0 {
					t.Errorf("pixel %v should be clear", p)
				}
			}
		})
	}
}

func TestGenerate_OnlyBinaryValues(t *testing.T) {
	m, err := Generate(testFigure(
		geometry.NewRect(15, 25, 40, 30),
		geometry.NewRect(60.5, 50.5, 90.5, 60.5),
	), 100, 50, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range m.Image().Pix {
		if v != 0 && v != 255 {
			t.Fatalf("found non-binary value %d", v)
		}
	}
}

func TestGenerate_ClipsOutOfBounds(t *testing.T) {
	// Box extends past the right edge of the canvas.
	m, err := Generate(testFigure(geometry.NewRect(100, 30, 130, 40)), 100, 50, Options{Iterations: -1})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// x 90..99 of the original 90..120, y 10..20.
	if got := m.Count(); got != 10*11 {
		t.Errorf("Count = %d, want %d", got, 10*11)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	fig := testFigure(
		geometry.NewRect(12.2, 22.9, 50.1, 28.4),
		geometry.NewRect(70, 40, 95.5, 55),
	)
	a, err := Generate(fig, 100, 50, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(fig, 100, 50, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Image().Pix, b.Image().Pix) {
		t.Error("identical inputs produced different masks")
	}
}

func TestSizeFor(t *testing.T) {
	fig := figure.Figure{ImageBB: geometry.NewRect(10.5, 20, 110.9, 70.7)}

	tests := []struct {
		factor float64
		w, h   int
	}{
		{1, 100, 50},
		{2, 200, 101},
		{0, 100, 50},
	}
	for _, tt := range tests {
		w, h := SizeFor(fig, tt.factor)
		if w != tt.w || h != tt.h {
			t.Errorf("SizeFor(%v) = %dx%d, want %dx%d", tt.factor, w, h, tt.w, tt.h)
		}
	}
}

func writeChart(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	path := filepath.Join(dir, "chart.png")
	if err := imaging.SavePNG(path, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWriter_SavesAndRunsHooks(t *testing.T) {
	dir := t.TempDir()
	chartPath := writeChart(t, dir, 100, 50)
	maskPath := filepath.Join(dir, "label.png")
	dbgPath := filepath.Join(dir, "dbg.png")

	dbg, err := DebugComposite(dbgPath, "")
	if err != nil {
		t.Fatalf("DebugComposite failed: %v", err)
	}

	var seen HookContext
	record := func(ctx HookContext) error {
		seen = ctx
		return nil
	}

	w := &Writer{Hooks: []Hook{record, dbg}}
	m, err := w.Write(testFigure(geometry.NewRect(20, 30, 40, 40)), chartPath, maskPath)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if seen.MaskPath != maskPath || seen.ChartPath != chartPath || seen.Mask != m {
		t.Errorf("hook saw unexpected context: %+v", seen)
	}

	saved, err := imaging.LoadGray(maskPath)
	if err != nil {
		t.Fatalf("mask not saved: %v", err)
	}
	if !bytes.Equal(saved.Pix, m.Image().Pix) {
		t.Error("saved mask differs from generated mask")
	}

	composite, err := imaging.Load(dbgPath)
	if err != nil {
		t.Fatalf("debug image not written: %v", err)
	}
	if composite.Bounds().Dx() != 100 || composite.Bounds().Dy() != 50 {
		t.Errorf("debug image size = %v", composite.Bounds())
	}

	// The debug hook must leave the persisted mask untouched.
	again, _ := imaging.LoadGray(maskPath)
	if !bytes.Equal(again.Pix, saved.Pix) {
		t.Error("debug hook altered the persisted mask")
	}
}

func TestWriter_HookError(t *testing.T) {
	dir := t.TempDir()
	chartPath := writeChart(t, dir, 100, 50)
	maskPath := filepath.Join(dir, "label.png")

	boom := errors.New("boom")
	w := &Writer{Hooks: []Hook{func(HookContext) error { return boom }}}
	_, err := w.Write(testFigure(geometry.NewRect(20, 30, 40, 40)), chartPath, maskPath)
	if !errors.Is(err, boom) {
		t.Errorf("expected hook error, got %v", err)
	}
	if _, statErr := os.Stat(maskPath); statErr != nil {
		t.Error("mask should be saved before hooks run")
	}
}

func TestWriter_EmptyLabelWritesNothing(t *testing.T) {
	dir := t.TempDir()
	chartPath := writeChart(t, dir, 100, 50)
	maskPath := filepath.Join(dir, "label.png")

	w := &Writer{}
	if _, err := w.Write(testFigure(), chartPath, maskPath); !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	if _, err := os.Stat(maskPath); !os.IsNotExist(err) {
		t.Error("no mask should be written for an empty label")
	}
}

func TestDebugComposite_InvalidTint(t *testing.T) {
	if _, err := DebugComposite("x.png", "not-a-color"); err == nil {
		t.Error("expected error for invalid tint")
	}
}
