package mask

import (
	"fmt"

	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/imaging"
)

// HookContext describes a mask that has just been persisted.
type HookContext struct {
	Figure    figure.Figure
	Mask      *Mask
	MaskPath  string
	ChartPath string
}

// Hook runs after a mask is saved. Hooks must not modify the mask.
type Hook func(ctx HookContext) error

// Writer generates, saves and post-processes masks.
type Writer struct {
	Options Options
	Hooks   []Hook
}

// Write generates the mask for fig at the size of the chart bitmap at
// chartPath, saves it to maskPath and runs the hooks in order. The first
// failing hook aborts the remaining ones; the mask stays on disk.
func (w *Writer) Write(fig figure.Figure, chartPath, maskPath string) (*Mask, error) {
	dims, err := imaging.ReadDimensions(chartPath)
	if err != nil {
		return nil, err
	}
	return w.WriteSized(fig, dims.Width, dims.Height, chartPath, maskPath)
}

// WriteSized is Write with explicit mask dimensions.
func (w *Writer) WriteSized(fig figure.Figure, width, height int, chartPath, maskPath string) (*Mask, error) {
	m, err := Generate(fig, width, height, w.Options)
	if err != nil {
		return nil, err
	}
	if err := m.Save(maskPath); err != nil {
		return nil, err
	}

	hc := HookContext{Figure: fig, Mask: m, MaskPath: maskPath, ChartPath: chartPath}
	for _, h := range w.Hooks {
		if err := h(hc); err != nil {
			return m, fmt.Errorf("mask post-processing failed: %w", err)
		}
	}
	return m, nil
}

// DebugComposite returns a hook that writes a tinted overlay of the mask on
// its chart to dbgPath. An empty tint selects imaging.DefaultTint.
func DebugComposite(dbgPath, tint string) (Hook, error) {
	c, err := imaging.ParseTint(tint)
	if err != nil {
		return nil, err
	}
	return func(ctx HookContext) error {
		chart, err := imaging.Load(ctx.ChartPath)
		if err != nil {
			return err
		}
		return imaging.SavePNG(dbgPath, imaging.DebugComposite(chart, ctx.Mask.Image(), c))
	}, nil
}
