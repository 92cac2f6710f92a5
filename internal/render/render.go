// Package render rasterizes figure regions of PDF pages.
//
// Figure bounds from the extractor are expressed at 100 DPI. Rendering at
// another resolution scales them by dpi/100 before cropping, and the crop is
// flattened onto white so that transparent page areas read as paper.
package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/chartmask/internal/command"
	"github.com/ironsheep/chartmask/internal/geometry"
	"github.com/ironsheep/chartmask/internal/imaging"
)

// BaseDPI is the resolution figure bounds are expressed in.
const BaseDPI = 100

// Renderer writes the region bounds of a PDF page, rendered at dpi, to a PNG
// at target. page is 0-based.
type Renderer interface {
	Render(ctx context.Context, pdfPath string, page int, bounds geometry.Rect, dpi int, target string) error
}

// Pdftoppm renders pages with the poppler pdftoppm tool.
type Pdftoppm struct {
	// Binary is the pdftoppm executable. Empty means "pdftoppm" on PATH.
	Binary string

	// TempDir holds intermediate page bitmaps. Empty means os.TempDir().
	TempDir string

	// Run executes the tool. Nil means command.Exec.
	Run command.Runner

	Logger *slog.Logger
}

// Render implements Renderer.
func (p *Pdftoppm) Render(ctx context.Context, pdfPath string, page int, bounds geometry.Rect, dpi int, target string) error {
	if page < 0 {
		return fmt.Errorf("invalid page index %d", page)
	}
	if dpi <= 0 {
		return fmt.Errorf("invalid resolution %d", dpi)
	}

	dir, err := os.MkdirTemp(p.TempDir, "render-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	bin := p.Binary
	if bin == "" {
		bin = "pdftoppm"
	}
	run := p.Run
	if run == nil {
		run = command.Exec
	}

	prefix := filepath.Join(dir, "page")
	pageArg := strconv.Itoa(page + 1)
	args := []string{
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(dpi),
		"-png", "-singlefile",
		pdfPath, prefix,
	}
	p.logger().Debug("rendering page", "pdf", pdfPath, "page", page, "dpi", dpi)
	if err := run(ctx, bin, args...); err != nil {
		return err
	}

	img, err := imaging.Load(prefix + ".png")
	if err != nil {
		return fmt.Errorf("failed to read rendered page: %w", err)
	}
	out, err := CropFigure(img, bounds, dpi)
	if err != nil {
		return err
	}
	return imaging.SavePNG(target, out)
}

func (p *Pdftoppm) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// CropFigure crops bounds, given at BaseDPI, out of a page rendered at dpi
// and flattens the result onto white. Each edge is truncated after scaling:
// the crop starts at int(x0*f) and is int(w*f) wide, with f = dpi/100.
func CropFigure(page image.Image, bounds geometry.Rect, dpi int) (*image.NRGBA, error) {
	f := float64(dpi) / BaseDPI
	x0 := int(bounds.X0 * f)
	y0 := int(bounds.Y0 * f)
	w := int(bounds.Width() * f)
	h := int(bounds.Height() * f)

	c, err := imaging.Crop(page, x0, y0, x0+w, y0+h)
	if err != nil {
		return nil, err
	}
	return imaging.FlattenOnWhite(c), nil
}
