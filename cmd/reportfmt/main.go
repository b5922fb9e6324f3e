// Package main provides the CLI entry point for reportfmt.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ukaji3/reportfmt-go/internal/config"
)

// app carries state shared by all subcommands.
type app struct {
	cfgFile string
	verbose bool
	pretty  bool

	logger *zap.Logger
	cm     *config.Manager
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "reportfmt",
		Short: "Build formatted research reports and spreadsheet charts",
		Long: `reportfmt lays out research content as Word documents in a fixed house
style and builds native Excel charts from tabular data.

Specs are YAML or JSON files; see the doc and chart subcommands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if a.verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger

			cm, err := config.NewManager(a.cfgFile)
			if err != nil {
				return err
			}
			a.cm = cm
			if f := cm.File(); f != "" {
				a.logger.Debug("config loaded", zap.String("file", f))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default: ./reportfmt.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&a.pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(
		newDocCmd(a),
		newChartCmd(a),
		newInspectCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}
