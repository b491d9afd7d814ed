package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orbit-cal/calibration-core/internal/calibrate"
	"github.com/orbit-cal/calibration-core/internal/oracle"
	"github.com/orbit-cal/calibration-core/internal/parammap"
	"github.com/orbit-cal/calibration-core/internal/sequence"
	"github.com/orbit-cal/calibration-core/internal/target"
	"github.com/orbit-cal/calibration-core/pkg/config"
	"github.com/orbit-cal/calibration-core/pkg/logger"
	"github.com/orbit-cal/calibration-core/pkg/utils"
)

var reportPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a calibration experiment",
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := loadExperiment()
		if err != nil {
			return err
		}
		return runExperiment(exp)
	},
}

func init() {
	runCmd.Flags().StringVar(&reportPath, "report", "", "write per-generation JSONL report to this file")
}

func runExperiment(exp *config.Experiment) error {
	runID := utils.GenerateRunID()
	log := logger.With("run_id", runID)

	optMap, err := buildOptMap(exp)
	if err != nil {
		return err
	}

	gen, err := sequence.NewGenerator(exp.Channels)
	if err != nil {
		return err
	}

	system, err := target.NewModel(target.ModelConfig{
		Label:          exp.Model.Label,
		Qubit:          exp.Model.Qubit,
		Channel:        exp.DriveChannel,
		Envelope:       exp.Model.Envelope,
		EnvelopeParams: exp.Model.EnvelopeParams,
		DragWeight:     exp.Model.DragWeight,
		References: target.References{
			Amp:           exp.Model.References.Amp,
			Delta:         exp.Model.References.Delta,
			FreqOffsetMHz: exp.Model.References.FreqOffsetMHz,
			XYAngle:       exp.Model.References.XYAngle,
		},
	})
	if err != nil {
		return err
	}

	sampler, err := oracle.SamplerByName(exp.Measurement.Mode)
	if err != nil {
		return err
	}

	orc, err := oracle.New(oracle.Config{
		SequenceCount:  exp.Sequences.Count,
		SequenceLength: exp.Sequences.Length,
		Shots:          exp.Measurement.Shots,
		ChannelLabel:   exp.DriveChannel,
	}, gen, optMap, system, sampler, exp.Seed, log)
	if err != nil {
		return err
	}

	strategy, err := calibrate.NewGaussianES(exp.Initial, exp.Optimizer.Spread, exp.Optimizer.Population, exp.Seed)
	if err != nil {
		return err
	}

	reporters := []calibrate.Reporter{calibrate.NewLogReporter(log)}
	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		reporters = append(reporters, calibrate.NewJSONLReporter(f))
	}
	reporter := calibrate.NewMultiReporter(reporters...)
	defer func() {
		if err := reporter.Close(); err != nil {
			log.Warn("failed to close reporter", "error", err)
		}
	}()

	driver := calibrate.NewDriver(calibrate.Config{
		Budget:      exp.Optimizer.Budget,
		MaxFailures: exp.Optimizer.MaxFailures,
		Workers:     exp.Optimizer.Workers,
		Convergence: calibrate.ConvergenceConfig{
			Tolerance: *exp.Optimizer.Tolerance,
			Window:    exp.Optimizer.ToleranceWindow,
		},
	}, strategy).WithReporter(reporter).WithLogger(log)
	if *exp.Optimizer.Tolerance == 0 {
		// Explicit tolerance 0 disables convergence detection; the run stops
		// on budget, failures or a signal.
		driver = driver.WithConvergence(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting calibration run",
		"strategy", strategy.Name(),
		"budget", exp.Optimizer.Budget,
		"population", exp.Optimizer.Population,
		"sequences", exp.Sequences.Count,
		"length", exp.Sequences.Length,
		"mode", exp.Measurement.Mode)

	result, runErr := driver.Run(ctx, func(vector []float64) (float64, error) {
		eval, err := orc.Evaluate(vector)
		if err != nil {
			return 0, err
		}
		return eval.Goal, nil
	})

	if result != nil {
		log.Info("calibration run finished",
			"reason", result.Reason,
			"converged", result.Converged,
			"aborted", result.Aborted,
			"generations", result.Generations,
			"evaluations", result.Evaluations,
			"best_goal", result.BestGoal,
			"best_vector", fmt.Sprintf("%v", result.BestVector))
	}
	return runErr
}

func buildOptMap(exp *config.Experiment) (*parammap.OptMap, error) {
	groups := make([]parammap.Group, len(exp.OptMap))
	for i, refs := range exp.OptMap {
		group := make(parammap.Group, len(refs))
		for j, ref := range refs {
			group[j] = parammap.ParameterID{
				Instruction: ref.Instruction,
				Channel:     ref.Channel,
				Envelope:    ref.Envelope,
				Attribute:   ref.Attribute,
			}
		}
		groups[i] = group
	}
	return parammap.New(groups)
}
