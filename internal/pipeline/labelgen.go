// Package pipeline drives the core packages over whole documents and
// datasets: label generation for a PDF, bad-figure listing and text
// prediction.
//
// Per-figure failures are logged and recorded in the outputs; they never
// abort the other figures of a run. Only structural problems such as an
// unwritable output directory or a failing extractor are returned as errors.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/ironsheep/chartmask/internal/blobstore"
	"github.com/ironsheep/chartmask/internal/extract"
	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/label"
	"github.com/ironsheep/chartmask/internal/mask"
	"github.com/ironsheep/chartmask/internal/render"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of figures processed in parallel.
const DefaultConcurrency = 4

// DefaultFactors are the DPI multiples every figure is rendered at.
var DefaultFactors = []int{1, 2}

// Skip reasons recorded in FigureResult.
const (
	SkipWriteFailed  = "write record failed"
	SkipMalformed    = "malformed record"
	SkipRenderFailed = "render failed"
	SkipNoText       = "no text boxes"
	SkipMaskFailed   = "mask generation failed"
)

// LabelGenerator extracts the figures of a PDF, renders them and writes
// their ground-truth masks.
type LabelGenerator struct {
	extractor   extract.Extractor
	renderer    render.Renderer
	classifier  *label.Classifier
	logger      *slog.Logger
	factors     []int
	maskOpts    mask.Options
	concurrency int
	flat        bool
	debugImages bool
	debugTint   string
	skipBad     bool
	tempDir     string
}

// Option configures a LabelGenerator.
type Option func(*LabelGenerator)

// WithLogger sets the logger. Each run adds its run ID to it.
func WithLogger(logger *slog.Logger) Option {
	return func(g *LabelGenerator) {
		g.logger = logger
	}
}

// WithConcurrency sets the number of figures processed in parallel.
func WithConcurrency(n int) Option {
	return func(g *LabelGenerator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithFactors sets the DPI multiples to render. Factor 1 is always
// rendered since masks are aligned with it.
func WithFactors(factors ...int) Option {
	return func(g *LabelGenerator) {
		fs := []int{1}
		for _, f := range factors {
			if f > 0 && !slices.Contains(fs, f) {
				fs = append(fs, f)
			}
		}
		g.factors = fs
	}
}

// WithFlat writes every artifact directly into the output directory
// instead of json/, img/ and text-masked/ subdirectories.
func WithFlat(flat bool) Option {
	return func(g *LabelGenerator) {
		g.flat = flat
	}
}

// WithDebugImages enables the tinted debug composite next to each mask.
// An empty tint selects the default colour.
func WithDebugImages(enabled bool, tint string) Option {
	return func(g *LabelGenerator) {
		g.debugImages = enabled
		g.debugTint = tint
	}
}

// WithSkipBad applies the label classifier before mask generation and
// skips figures it rejects.
func WithSkipBad(skip bool) Option {
	return func(g *LabelGenerator) {
		g.skipBad = skip
	}
}

// WithClassifier replaces the default classifier used by WithSkipBad.
func WithClassifier(c *label.Classifier) Option {
	return func(g *LabelGenerator) {
		if c != nil {
			g.classifier = c
		}
	}
}

// WithMaskOptions sets the mask generation parameters.
func WithMaskOptions(opts mask.Options) Option {
	return func(g *LabelGenerator) {
		g.maskOpts = opts
	}
}

// WithTempDir sets the parent directory for RunStore's working copies.
func WithTempDir(dir string) Option {
	return func(g *LabelGenerator) {
		g.tempDir = dir
	}
}

// NewLabelGenerator creates a LabelGenerator using ex to find figures and r
// to render them.
func NewLabelGenerator(ex extract.Extractor, r render.Renderer, opts ...Option) *LabelGenerator {
	g := &LabelGenerator{
		extractor:   ex,
		renderer:    r,
		classifier:  label.NewClassifier(),
		factors:     slices.Clone(DefaultFactors),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// FigureResult records what happened to one figure.
type FigureResult struct {
	ID      string `json:"id"`
	Labeled bool   `json:"labeled"`
	Skip    string `json:"skip,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Outputs lists the files written by a run, grouped by kind, in figure
// order.
type Outputs struct {
	RunID   string         `json:"run_id"`
	JSON    []string       `json:"json"`
	Images  []string       `json:"images"`
	Labels  []string       `json:"labels"`
	Figures []FigureResult `json:"figures"`
}

type layout struct {
	json, img, label string
}

func newLayout(outDir string, flat bool) (layout, error) {
	if flat {
		return layout{outDir, outDir, outDir}, os.MkdirAll(outDir, 0o750)
	}
	l := layout{
		json:  filepath.Join(outDir, figure.JSONDir),
		img:   filepath.Join(outDir, figure.ImageDir),
		label: filepath.Join(outDir, figure.LabelDir),
	}
	for _, d := range []string{l.json, l.img, l.label} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return l, err
		}
	}
	return l, nil
}

// Run processes the PDF at pdfPath, writing artifacts below outDir.
func (g *LabelGenerator) Run(ctx context.Context, pdfPath, outDir string) (*Outputs, error) {
	return g.run(ctx, uuid.NewString(), pdfPath, outDir, g.flat)
}

func (g *LabelGenerator) run(ctx context.Context, runID, pdfPath, outDir string, flat bool) (*Outputs, error) {
	logger := g.logger.With("run", runID)

	pdfAbs, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", pdfPath, err)
	}
	outAbs, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", outDir, err)
	}

	dirs, err := newLayout(outAbs, flat)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directories: %w", err)
	}

	ident := figure.IdentFromPath(pdfAbs)
	start := time.Now()
	logger.Info("extracting figures", "pdf", pdfAbs)

	records, err := g.extractor.Extract(ctx, pdfAbs, filepath.Join(dirs.json, ident))
	if err != nil {
		return nil, fmt.Errorf("figure extraction failed: %w", err)
	}

	results := make([]figureOutputs, len(records))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i, rec := range records {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = g.processFigure(ctx, logger, pdfAbs, ident, dirs, rec)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Outputs{RunID: runID}
	for _, r := range results {
		out.JSON = append(out.JSON, r.json...)
		out.Images = append(out.Images, r.images...)
		out.Labels = append(out.Labels, r.labels...)
		out.Figures = append(out.Figures, r.result)
	}

	logger.Info("label generation complete",
		"pdf", pdfAbs,
		"figures", len(records),
		"labels", len(out.Labels),
		"elapsed", time.Since(start),
	)
	return out, nil
}

type figureOutputs struct {
	json, images, labels []string
	result               FigureResult
}

func (g *LabelGenerator) processFigure(ctx context.Context, logger *slog.Logger, pdfPath, ident string, dirs layout, rec extract.Record) figureOutputs {
	names := figure.Names{Ident: ident, Index: rec.Index}
	out := figureOutputs{result: FigureResult{ID: names.ID()}}
	logger = logger.With("figure", names.ID())

	fail := func(skip string, err error) figureOutputs {
		out.result.Skip = skip
		if err != nil {
			out.result.Error = err.Error()
			logger.Warn("figure skipped", "reason", skip, "error", err)
		} else {
			logger.Info("figure skipped", "reason", skip)
		}
		return out
	}

	jsonPath := filepath.Join(dirs.json, names.JSON())
	if err := os.WriteFile(jsonPath, rec.Raw, 0o644); err != nil {
		return fail(SkipWriteFailed, err)
	}
	out.json = append(out.json, jsonPath)

	if rec.Err != nil {
		return fail(SkipMalformed, rec.Err)
	}
	fig := rec.Figure

	for _, factor := range g.factors {
		target := filepath.Join(dirs.img, names.Image(factor))
		logger.Debug("rendering figure", "target", target, "factor", factor)
		if err := g.renderer.Render(ctx, pdfPath, fig.Page-1, fig.ImageBB, factor*render.BaseDPI, target); err != nil {
			return fail(SkipRenderFailed, err)
		}
		out.images = append(out.images, target)
	}

	if g.skipBad {
		if v := g.classifier.Classify(fig); v.Bad {
			return fail(string(v.Reason), nil)
		}
	}

	maskPath := filepath.Join(dirs.label, names.Label())
	w := mask.Writer{Options: g.maskOpts}
	var dbgPath string
	if g.debugImages {
		dbgPath = filepath.Join(dirs.label, names.Debug())
		hook, err := mask.DebugComposite(dbgPath, g.debugTint)
		if err != nil {
			return fail(SkipMaskFailed, err)
		}
		w.Hooks = append(w.Hooks, hook)
	}

	width, height := mask.SizeFor(fig, g.maskOpts.Factor)
	chartPath := filepath.Join(dirs.img, names.Image(1))
	m, err := w.WriteSized(fig, width, height, chartPath, maskPath)
	switch {
	case errors.Is(err, mask.ErrEmptyLabel):
		return fail(SkipNoText, nil)
	case m == nil:
		return fail(SkipMaskFailed, err)
	case err != nil:
		// The mask is on disk; only post-processing failed.
		logger.Warn("debug image failed", "error", err)
		out.labels = append(out.labels, maskPath)
	default:
		out.labels = append(out.labels, maskPath)
		if dbgPath != "" {
			out.labels = append(out.labels, dbgPath)
		}
	}

	out.result.Labeled = true
	logger.Debug("label written", "mask", maskPath, "pixels", m.Count())
	return out
}

// RunStore downloads key from inBucket, runs the generator over it with a
// flat layout in a temporary directory and uploads the artifacts to
// outBucket under prefix/json, prefix/img and prefix/text-masked. The
// temporary directory is removed afterwards. Upload failures are collected
// and returned together once every upload has been attempted.
func (g *LabelGenerator) RunStore(ctx context.Context, store blobstore.Store, inBucket, key, outBucket, prefix string) (*Outputs, error) {
	runID := uuid.NewString()
	logger := g.logger.With("run", runID)

	dir, err := os.MkdirTemp(g.tempDir, "chartmask-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	logger.Debug("temp directory created", "dir", dir)

	pdfPath := filepath.Join(dir, path.Base(key))
	if err := blobstore.Download(ctx, store, inBucket, key, pdfPath); err != nil {
		return nil, err
	}

	out, err := g.run(ctx, runID, pdfPath, dir, true)
	if err != nil {
		return nil, err
	}

	var errs []error
	upload := func(kind string, files []string) []string {
		keys := make([]string, 0, len(files))
		for _, f := range files {
			k := path.Join(prefix, kind, filepath.Base(f))
			if err := blobstore.Upload(ctx, store, outBucket, k, f); err != nil {
				logger.Warn("upload failed", "key", k, "error", err)
				errs = append(errs, err)
				continue
			}
			keys = append(keys, k)
		}
		return keys
	}

	uploaded := &Outputs{
		RunID:   out.RunID,
		JSON:    upload(figure.JSONDir, out.JSON),
		Images:  upload(figure.ImageDir, out.Images),
		Labels:  upload(figure.LabelDir, out.Labels),
		Figures: out.Figures,
	}
	return uploaded, errors.Join(errs...)
}
