package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ErrNotExist is wrapped by load errors for files that do not exist, so
// callers can tell a missing file apart from a corrupt one.
var ErrNotExist = fs.ErrNotExist

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path,
// together with the file's size and modification time. Load stats the file
// on every call and decodes it again when either has changed, so a file
// rewritten in place is never served stale. Gray conversions requested
// through LoadGray are kept on the same entry.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until removed via Evict(). Callers that
// write an image they have loaded before should evict its path.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	chart, err := cache.Load("/data/img/paper-Figure-0.png")
//	if err != nil {
//	    return err
//	}
//	pred, err := cache.LoadGray("/data/pred/paper-Figure-0-predicted.png")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*cacheEntry
}

type cacheEntry struct {
	img     image.Image
	gray    *image.Gray
	size    int64
	modTime time.Time
}

func (e *cacheEntry) fresh(info fs.FileInfo) bool {
	return e.size == info.Size() && e.modTime.Equal(info.ModTime())
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*cacheEntry),
	}
}

// Load retrieves an image from the cache or loads it from disk if it is not
// cached or has changed since it was cached.
//
// Supported formats are PNG, JPEG, GIF, BMP and TIFF. The image is cached
// using the exact path string provided.
//
// # Errors
//
//   - Returns an error wrapping ErrNotExist if the file does not exist
//   - Returns an error if the file is not a decodable image
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.entry(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// LoadGray is Load followed by ToGray, with the gray result cached.
func (c *ImageCache) LoadGray(path string) (*image.Gray, error) {
	e, err := c.entry(path)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	g := e.gray
	c.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	g = ToGray(e.img)
	c.mu.Lock()
	if e.gray == nil {
		e.gray = g
	}
	g = e.gray
	c.mu.Unlock()
	return g, nil
}

func (c *ImageCache) entry(path string) (*cacheEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok && e.fresh(info) {
		return e, nil
	}

	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	e = &cacheEntry{img: img, size: info.Size(), modTime: info.ModTime()}

	c.mu.Lock()
	c.images[path] = e
	c.mu.Unlock()

	return e, nil
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
// After eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached source images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Load decodes the image file at path without caching.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// LoadGray decodes the image at path and converts it to 8-bit gray.
func LoadGray(path string) (*image.Gray, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// ToGray converts img to an 8-bit gray image whose bounds start at the
// origin. Gray inputs already at the origin are returned as-is.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// ReadDimensions returns the dimensions of an image file by decoding only
// its header.
func ReadDimensions(path string) (*DimensionsResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header %s: %w", path, err)
	}
	return &DimensionsResult{Width: cfg.Width, Height: cfg.Height}, nil
}

// GetDimensions returns the dimensions of an image file. The image is loaded
// into the cache if not already present.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
