package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chartmask/internal/blobstore"
	"github.com/ironsheep/chartmask/internal/command"
	"github.com/ironsheep/chartmask/internal/config"
	"github.com/ironsheep/chartmask/internal/extract"
	"github.com/ironsheep/chartmask/internal/pipeline"
	"github.com/ironsheep/chartmask/internal/render"
)

var errToolNotFound = errors.New("external tool not found on PATH")

func newLabelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label [PDF OUTDIR]",
		Short: "Extract the figures of a PDF and write their text masks",
		Long: `Label runs the figure extractor over a PDF, renders every figure at each
render factor and writes a binary mask of its text boxes.

Outputs are grouped into json/, img/ and text-masked/ below OUTDIR unless
--flat is given. With the bucket flags the PDF is downloaded from the blob
store and the outputs are uploaded under PREFIX/json, PREFIX/img and
PREFIX/text-masked.

Examples:
  chartmask label paper.pdf out/
  chartmask label --skip-bad --dbg-image paper.pdf out/
  chartmask label --in-bucket pdfs --key 2016/paper.pdf --out-bucket corpus --prefix paper`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts PDF and OUTDIR, received %d arg(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("flat") {
				cfg.Label.Flat, _ = flags.GetBool("flat")
			}
			if flags.Changed("dbg-image") {
				cfg.Label.DebugImages, _ = flags.GetBool("dbg-image")
			}
			if flags.Changed("skip-bad") {
				cfg.Label.SkipBad, _ = flags.GetBool("skip-bad")
			}
			if flags.Changed("factors") {
				cfg.Label.Factors, _ = flags.GetIntSlice("factors")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			gen := newLabelGenerator(a, cfg)

			inBucket, _ := flags.GetString("in-bucket")
			if len(args) == 2 {
				if inBucket != "" {
					return errors.New("give either PDF OUTDIR or the bucket flags, not both")
				}
				if err := requireTools(cfg.Tools.Pdffigures, cfg.Tools.Pdftoppm); err != nil {
					return err
				}
				out, err := gen.Run(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				logSummary(a, out)
				return nil
			}

			key, _ := flags.GetString("key")
			outBucket, _ := flags.GetString("out-bucket")
			prefix, _ := flags.GetString("prefix")
			if inBucket == "" || key == "" || outBucket == "" {
				return errors.New("PDF OUTDIR or --in-bucket, --key and --out-bucket are required")
			}

			if err := requireTools(cfg.Tools.Pdffigures, cfg.Tools.Pdftoppm); err != nil {
				return err
			}

			store, err := blobstore.Open(cfg.Store.Backend, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer blobstore.Close(store)

			out, err := gen.RunStore(cmd.Context(), store, inBucket, key, outBucket, prefix)
			if out != nil {
				logSummary(a, out)
			}
			return err
		},
	}

	cmd.Flags().Bool("flat", false, "Write every output directly into OUTDIR")
	cmd.Flags().Bool("dbg-image", false, "Also write a tinted mask-over-chart debug image per figure")
	cmd.Flags().Bool("skip-bad", false, "Skip figures whose labels are classified as bad")
	cmd.Flags().IntSlice("factors", nil, "Render factors relative to 100 DPI (default from config: 1,2)")
	cmd.Flags().String("in-bucket", "", "Blob store bucket holding the PDF")
	cmd.Flags().String("key", "", "Key of the PDF inside --in-bucket")
	cmd.Flags().String("out-bucket", "", "Blob store bucket receiving the outputs")
	cmd.Flags().String("prefix", "", "Key prefix for the uploaded outputs")

	return cmd
}

func newLabelGenerator(a *app, cfg *config.Config) *pipeline.LabelGenerator {
	ex := &extract.Pdffigures{Binary: cfg.Tools.Pdffigures, Logger: a.logger}
	r := &render.Pdftoppm{Binary: cfg.Tools.Pdftoppm, TempDir: cfg.Label.TempDir, Logger: a.logger}

	return pipeline.NewLabelGenerator(ex, r,
		pipeline.WithLogger(a.logger),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithFactors(cfg.Label.Factors...),
		pipeline.WithFlat(cfg.Label.Flat),
		pipeline.WithDebugImages(cfg.Label.DebugImages, cfg.Label.DebugTint),
		pipeline.WithSkipBad(cfg.Label.SkipBad),
		pipeline.WithMaskOptions(cfg.MaskOptions(1)),
		pipeline.WithTempDir(cfg.Label.TempDir),
	)
}

func requireTools(names ...string) error {
	for _, name := range names {
		if !command.Available(name) {
			return fmt.Errorf("%w: %s", errToolNotFound, name)
		}
	}
	return nil
}

func logSummary(a *app, out *pipeline.Outputs) {
	skipped := 0
	for _, f := range out.Figures {
		if !f.Labeled {
			skipped++
		}
	}
	a.logger.Info("label run finished",
		"run", out.RunID,
		"figures", len(out.Figures),
		"labels", len(out.Labels),
		"skipped", skipped,
	)
}
