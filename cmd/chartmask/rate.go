package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chartmask/internal/report"
	"github.com/ironsheep/chartmask/internal/scoring"
)

func newRateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate LIST",
		Short: "Score predicted masks against ground truth",
		Long: `Rate reads LIST, a file with one predicted mask name per line relative to
the list's directory, pairs each prediction with its ground truth
("<stem>-label.png", the stem being the name without its last 14
characters), and reports pixel counts, precision, recall and F1.

Both masks are dilated before comparison so near misses are tolerated.
Pairs with a missing file are skipped and counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.ScoringOptions()
			opts.Logger = a.logger
			if cmd.Flags().Changed("thresh") {
				t, _ := cmd.Flags().GetInt("thresh")
				if t < 0 || t > 255 {
					return fmt.Errorf("threshold %d out of range 0..255", t)
				}
				opts.PredictionThreshold = uint8(t)
			}

			format := a.cfg.Score.Format
			if cmd.Flags().Changed("format") {
				format, _ = cmd.Flags().GetString("format")
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("output"); path != "" {
				file, err := createReportFile(path)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}

			w, err := report.New(f, out)
			if err != nil {
				return err
			}
			if details, _ := cmd.Flags().GetBool("details"); details && f == report.FormatText {
				w = report.NewTextWriter(out, report.WithDetails(true))
			}

			res, err := scoring.ScoreList(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if _, err := w.WriteScore(res); err != nil {
				return err
			}
			if err := res.Err(); err != nil {
				a.logger.Warn("metrics incomplete", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().IntP("thresh", "t", 0, "Prediction binarization level (default from config: 200)")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json or markdown")
	cmd.Flags().Bool("details", false, "List every pair in text output")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file (directories are created)")

	return cmd
}

// createReportFile creates path and its parent directories.
func createReportFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}
