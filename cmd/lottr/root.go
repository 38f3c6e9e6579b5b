package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mapomagpie/lottr/internal/logging"
)

var (
	configPath string
	outputOnly bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "lottr [input-file]",
	Short:         "Resumable, concurrent batch translator for line-oriented text corpora",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(os.Stderr, level)
		slog.SetDefault(logger)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		return nil
	},
	RunE: runJob,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "default.toml", "path to the job's TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&outputOnly, "outputonly", "j", false, "skip translation, only rewrite output from the existing sidecar")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")
}
