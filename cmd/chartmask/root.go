package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chartmask/internal/config"
	"github.com/ironsheep/chartmask/internal/logging"
)

// app carries the state shared by every subcommand once the persistent
// pre-run has loaded the configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd creates the root command for chartmask.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "chartmask",
		Short: "Build and evaluate text masks for chart figures",
		Long: `chartmask extracts figures from PDFs, renders them, and writes binary masks
of the text inside each figure for training text detectors. It also reads
the text out of predicted masks and scores predictions against ground truth.

Configuration is read from --config, ./.chartmask.yaml or
$XDG_CONFIG_HOME/chartmask/config.yaml, then from .env and CHARTMASK_*
environment variables. Command flags override both.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newFindBadCmd(a))
	cmd.AddCommand(newLabelCmd(a))
	cmd.AddCommand(newPredictCmd(a))
	cmd.AddCommand(newRateCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// setup loads the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, used, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if used != "" {
		logger.Debug("loaded configuration", "path", used)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// Execute runs the root command with a context cancelled on SIGINT or
// SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
