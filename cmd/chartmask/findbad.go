package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chartmask/internal/blobstore"
	"github.com/ironsheep/chartmask/internal/pipeline"
	"github.com/ironsheep/chartmask/internal/report"
)

func newFindBadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findbad [DIR]",
		Short: "List the figures whose labels are unusable",
		Long: `Findbad classifies every figure JSON record in DIR, or under a prefix of a
blob store bucket, and prints the identifier of each rejected figure.

Examples:
  # Records written by "chartmask label"
  chartmask findbad out/json

  # Records stored in a bucket
  chartmask findbad --bucket corpus --prefix papers/json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, _ := cmd.Flags().GetString("bucket")
			prefix, _ := cmd.Flags().GetString("prefix")
			format, _ := cmd.Flags().GetString("format")

			w, err := newReportWriter(cmd, format)
			if err != nil {
				return err
			}

			var src pipeline.RecordSource
			switch {
			case len(args) == 1 && bucket != "":
				return errors.New("give either DIR or --bucket, not both")
			case len(args) == 1:
				src = pipeline.DirSource{Dir: args[0]}
			case bucket != "":
				store, err := blobstore.Open(a.cfg.Store.Backend, a.cfg.Store.Path)
				if err != nil {
					return err
				}
				defer blobstore.Close(store)
				src = pipeline.StoreSource{Store: store, Bucket: bucket, Prefix: prefix}
			default:
				return errors.New("a record directory or --bucket is required")
			}

			bad, err := pipeline.FindBad(cmd.Context(), src, nil, a.logger)
			if err != nil {
				return err
			}
			a.logger.Info("classified records", "bad", len(bad))
			_, err = w.WriteBad(bad)
			return err
		},
	}

	cmd.Flags().String("bucket", "", "Read records from this blob store bucket")
	cmd.Flags().String("prefix", "", "Key prefix of the records inside --bucket")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json or markdown")

	return cmd
}

// newReportWriter returns the report writer for a --format value, writing
// to the command's stdout.
func newReportWriter(cmd *cobra.Command, format string) (report.Writer, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return report.New(f, cmd.OutOrStdout())
}
