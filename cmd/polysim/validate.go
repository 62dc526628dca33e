package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stochsim/polysim/internal/polysim"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model.yml>",
		Short: "Validate a model file without running it",
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
			fmt.Printf("%s: ok (%d genes, %d promoters, %d reactions)\n",
				cfg.Name, len(cfg.Genome.Genes), len(cfg.Genome.Promoters), len(cfg.Reactions))
			return nil
		},
	}
}
