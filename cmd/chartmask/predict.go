package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chartmask/internal/ocr"
	"github.com/ironsheep/chartmask/internal/pipeline"
)

func newPredictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict MASK IMAGE",
		Short: "Read the text inside the regions of a predicted mask",
		Long: `Predict thresholds a predicted text mask, fits a rotated rectangle around
each connected region, cuts the de-rotated patch out of IMAGE and reads it
with Tesseract at 0, 90, 180 and 270 degrees.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold := a.cfg.Predict.Threshold
			if cmd.Flags().Changed("thresh") {
				threshold, _ = cmd.Flags().GetInt("thresh")
			}
			if threshold < 0 || threshold > 255 {
				return fmt.Errorf("threshold %d out of range 0..255", threshold)
			}
			format, _ := cmd.Flags().GetString("format")
			w, err := newReportWriter(cmd, format)
			if err != nil {
				return err
			}

			tess := &ocr.Tesseract{Language: a.cfg.OCR.Language, TessdataPrefix: a.cfg.OCR.TessdataPrefix}
			p := pipeline.NewPredictor(tess,
				pipeline.WithThreshold(uint8(threshold)),
				pipeline.WithRegionOptions(a.cfg.RegionOptions()),
				pipeline.WithPredictorLogger(a.logger),
			)

			preds, err := p.Predict(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, err = w.WritePredictions(preds)
			return err
		},
	}

	cmd.Flags().IntP("thresh", "t", 0, "Mask level treated as text (default from config: 200)")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json or markdown")

	return cmd
}
