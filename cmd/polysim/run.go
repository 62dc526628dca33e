package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stochsim/polysim/internal/polysim"
)

func newRunCmd() *cobra.Command {
	var (
		output  string
		seed    int64
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "run <model.yml>",
		Short: "Run a simulation and write a species count report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading model file: %w", err)
			}
			cfg, err := polysim.LoadModelConfig(data)
			if err != nil {
				return err
			}
			if seed != 0 {
				cfg.Run.Seed = seed
			}

			var logger polysim.Logger = polysim.NewNoOpLogger()
			if verbose {
				logger = newStderrLogger()
			}

			model, err := polysim.BuildModel(cfg, logger)
			if err != nil {
				return fmt.Errorf("building model: %w", err)
			}

			if err := model.Scheduler.Run(cmd.Context(), cfg.Run.StopTime, cfg.Run.SampleInterval); err != nil {
				return fmt.Errorf("run %s: %w", model.Scheduler.ID(), err)
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating report file: %w", err)
				}
				defer f.Close()
				out = f
			}
			snapshots := model.Scheduler.Snapshots()
			if err := polysim.WriteTSVReport(out, snapshots, polysim.SpeciesNames(snapshots)); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			if output != "" {
				fmt.Printf("run %s: %d samples written to %s\n", model.Scheduler.ID(), len(snapshots), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "report file path (default stdout)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the random seed from the model file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log run progress to stderr")
	return cmd
}
