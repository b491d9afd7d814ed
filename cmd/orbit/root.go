package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbit-cal/calibration-core/pkg/config"
	"github.com/orbit-cal/calibration-core/pkg/logger"
)

var (
	experimentPath string
	logLevelFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "orbit",
	Short: "Closed-loop randomized-benchmarking calibration",
	Long: `orbit drives a closed calibration loop: a population-based optimizer
proposes control parameter vectors, and a randomized-benchmarking oracle
measures each candidate against the target system and feeds back a scalar
goal value.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&experimentPath, "config", "c", "experiment.yaml", "experiment configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadExperiment loads the experiment file and applies the log level, with
// the command-line flag taking precedence over the file.
func loadExperiment() (*config.Experiment, error) {
	exp, err := config.LoadExperiment(experimentPath)
	if err != nil {
		return nil, err
	}
	levelName := exp.LogLevel
	if logLevelFlag != "" {
		levelName = logLevelFlag
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)
	logger.SetDefault(logger.New(os.Stderr, false))
	return exp, nil
}
