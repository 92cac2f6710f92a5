package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/label"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Classify one figure record as a good or bad label",
		Long: `Check reads one figure JSON record produced by the figure extractor and
reports whether its text boxes make a usable training label.

A label is bad when the figure has no text, a single text box, text only in
its top or bottom border band, or text covering more than half its area.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fig, err := figure.Load(args[0])
			if err != nil {
				return err
			}
			v := label.NewClassifier().Classify(fig)
			if v.Bad {
				fmt.Fprintf(cmd.OutOrStdout(), "Bad label: %s\n", v.Reason.Description())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Good label")
			return nil
		},
	}
}
