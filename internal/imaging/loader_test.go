package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/image/tiff"
)

// createTestImage writes a solid-colour PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
	writePNG(t, path, createInMemoryImage(width, height, c))
	return path
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize its map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadGray(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 20, 10, color.RGBA{200, 200, 200, 255})

	g1, err := cache.LoadGray(imgPath)
	if err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}
	if g1.GrayAt(5, 5).Y != 200 {
		t.Errorf("gray value = %d, want 200", g1.GrayAt(5, 5).Y)
	}

	g2, _ := cache.LoadGray(imgPath)
	if g1 != g2 {
		t.Error("second LoadGray did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Fatal("Load should fail for non-existent file")
	}
	if !IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()

	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := cache.Load(path)
	if err == nil {
		t.Fatal("Load should fail for invalid image data")
	}
	if IsNotExist(err) {
		t.Error("decode failure reported as missing file")
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})

	if _, err := cache.LoadGray(imgPath); err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}

	cache.Evict(imgPath)
	if cache.Len() != 0 {
		t.Errorf("Evict did not remove image from cache: %d remain", cache.Len())
	}

	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ReloadsChangedFile(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 10, 10, color.Gray{Y: 40})

	g1, err := cache.LoadGray(imgPath)
	if err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}

	writePNG(t, imgPath, createInMemoryImage(10, 10, color.Gray{Y: 220}))
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(imgPath, later, later); err != nil {
		t.Fatal(err)
	}

	g2, err := cache.LoadGray(imgPath)
	if err != nil {
		t.Fatalf("LoadGray after rewrite failed: %v", err)
	}
	if g1 == g2 {
		t.Fatal("rewritten file served from cache")
	}
	if g2.GrayAt(3, 3).Y != 220 {
		t.Errorf("gray value = %d, want 220", g2.GrayAt(3, 3).Y)
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.LoadGray(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoad_TIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.tiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewGray(image.Rect(0, 0, 8, 4))
	src.SetGray(3, 2, color.Gray{Y: 255})
	if err := tiff.Encode(f, src, nil); err != nil {
		t.Fatalf("tiff encode: %v", err)
	}
	f.Close()

	g, err := LoadGray(path)
	if err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}
	if g.Bounds().Dx() != 8 || g.GrayAt(3, 2).Y != 255 || g.GrayAt(0, 0).Y != 0 {
		t.Error("TIFF content not preserved")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	g := image.NewGray(image.Rect(0, 0, 5, 5))
	g.SetGray(1, 1, color.Gray{Y: 255})

	if err := SavePNG(path, g); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	back, err := LoadGray(path)
	if err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}
	if back.GrayAt(1, 1).Y != 255 || back.GrayAt(2, 2).Y != 0 {
		t.Error("saved PNG differs from source")
	}

	if err := SavePNG(filepath.Join(t.TempDir(), "missing", "out.png"), g); err == nil {
		t.Error("SavePNG should fail for a missing directory")
	}
}

func TestToGray_RebasesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 20, 15))
	src.Set(10, 10, color.White)

	g := ToGray(src)
	if g.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds = %v, want origin-based", g.Bounds())
	}
	if g.GrayAt(0, 0).Y != 255 {
		t.Error("top-left pixel not carried over")
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 300, 200, color.RGBA{100, 100, 100, 255})

	dims, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}

	if dims.Width != 300 {
		t.Errorf("Width: got %d, want 300", dims.Width)
	}
	if dims.Height != 200 {
		t.Errorf("Height: got %d, want 200", dims.Height)
	}

	if _, err := GetDimensions(cache, "/nonexistent/image.png"); err == nil {
		t.Error("GetDimensions should fail for non-existent file")
	}
}

func TestReadDimensions(t *testing.T) {
	imgPath := createTestImage(t, 64, 24, color.RGBA{10, 20, 30, 255})

	dims, err := ReadDimensions(imgPath)
	if err != nil {
		t.Fatalf("ReadDimensions failed: %v", err)
	}
	if dims.Width != 64 || dims.Height != 24 {
		t.Errorf("dimensions = %dx%d, want 64x24", dims.Width, dims.Height)
	}

	if _, err := ReadDimensions(filepath.Join(t.TempDir(), "none.png")); !IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}
