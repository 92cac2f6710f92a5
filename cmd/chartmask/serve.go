package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/chartmask/internal/ocr"
	"github.com/ironsheep/chartmask/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin and stdout",
		Long: `Serve exposes label_check, mask_generate, regions_extract, masks_score and
image_dimensions as MCP tools over JSON-RPC on stdio. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []server.Option{
				server.WithLogger(a.logger),
				server.WithVersion(getVersion()),
				server.WithMaskOptions(a.cfg.MaskOptions(1)),
				server.WithRegionOptions(a.cfg.RegionOptions()),
				server.WithScoringOptions(a.cfg.ScoringOptions()),
				server.WithDebugTint(a.cfg.Label.DebugTint),
				server.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
			}
			if noOCR, _ := cmd.Flags().GetBool("no-ocr"); !noOCR {
				tess := &ocr.Tesseract{Language: a.cfg.OCR.Language, TessdataPrefix: a.cfg.OCR.TessdataPrefix}
				info := tess.Info()
				a.logger.Debug("ocr engine", "available", info.Available, "version", info.Version, "language", info.Language)
				if info.Available {
					opts = append(opts, server.WithRecognizer(tess))
				}
			}

			a.logger.Info("chartmask MCP server starting", "version", getVersion())
			return server.New(opts...).Run(cmd.Context())
		},
	}

	cmd.Flags().Bool("no-ocr", false, "Disable OCR in regions_extract")

	return cmd
}
