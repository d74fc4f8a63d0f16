package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learnsmart/internal/dataset"
)

func newDatasetCommand() *cobra.Command {
	datasetCommand := &cobra.Command{
		Use:   "dataset",
		Short: "Synthetic training data",
	}
	datasetCommand.AddCommand(newDatasetGenerateCommand())
	return datasetCommand
}

func newDatasetGenerateCommand() *cobra.Command {
	opts := dataset.DefaultOptions()
	var outputPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a labeled burnout dataset as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Samples <= 0 {
				return fmt.Errorf("--samples must be greater than 0, got %d", opts.Samples)
			}
			rows := dataset.Generate(opts)
			if err := dataset.Save(outputPath, rows); err != nil {
				return fmt.Errorf("dataset.Save() > %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s\n", len(rows), outputPath)
			return err
		},
	}
	cmd.Flags().IntVar(&opts.Samples, "samples", opts.Samples, "Number of samples")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "Random seed")
	cmd.Flags().StringVar(&outputPath, "out", "data/burnout_dataset.csv", "Output CSV path")
	return cmd
}
