package main

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/cli"
	"github.com/at-ishikawa/learnsmart/internal/dataset"
)

// DefaultTestRatio is the share of samples held out to evaluate a trained model.
const DefaultTestRatio = 0.2

// kindFlag selects the model family of model train.
type kindFlag classifier.Kind

var kindNames = map[string]classifier.Kind{
	"tree":     classifier.KindDecisionTree,
	"logistic": classifier.KindLogisticRegression,
}

func (k *kindFlag) Set(val string) error {
	kind, ok := kindNames[val]
	if !ok {
		return fmt.Errorf("invalid model kind: %s", val)
	}
	*k = kindFlag(kind)
	return nil
}

func (k kindFlag) String() string {
	for name, kind := range kindNames {
		if kind == classifier.Kind(k) {
			return name
		}
	}
	return string(k)
}

func (k *kindFlag) Type() string {
	return "kind"
}

var _ pflag.Value = (*kindFlag)(nil)

func newModelCommand() *cobra.Command {
	modelCommand := &cobra.Command{
		Use:   "model",
		Short: "Burnout model commands",
	}
	modelCommand.AddCommand(newModelTrainCommand())
	return modelCommand
}

type trainOptions struct {
	dataPath  string
	outPath   string
	kind      kindFlag
	testRatio float64
	seed      uint64
}

func newModelTrainCommand() *cobra.Command {
	opts := trainOptions{
		kind: kindFlag(classifier.KindDecisionTree),
		seed: dataset.DefaultOptions().Seed,
	}
	var output outputFlag

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a burnout model and save it as an artifact",
		Long: `Train a burnout model on a dataset CSV, or on a freshly generated dataset when --data is not set.
A stratified share of the samples is held out and the accuracy on it is stored with the artifact.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics, err := trainModel(opts, time.Now())
			if err != nil {
				return err
			}
			slog.Info("model saved", "path", opts.outPath, "kind", string(opts.kind))
			return cli.NewPrinter(cmd.OutOrStdout(), cli.Format(output)).PrintMetrics(metrics)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.dataPath, "data", "", "Dataset CSV path. Generates a dataset when empty")
	flags.StringVar(&opts.outPath, "out", "models/burnout_model.json", "Artifact path, .json or .yml")
	flags.Var(&opts.kind, "kind", fmt.Sprintf("Model kind. Options: %v", slices.Sorted(maps.Keys(kindNames))))
	flags.Float64Var(&opts.testRatio, "test-ratio", DefaultTestRatio, "Share of samples held out for evaluation")
	flags.Uint64Var(&opts.seed, "seed", opts.seed, "Random seed of the split and the generated dataset")
	addOutputFlag(flags, &output)
	return cmd
}

func trainModel(opts trainOptions, trainedAt time.Time) (classifier.Metrics, error) {
	var rows []dataset.Row
	if opts.dataPath == "" {
		rows = dataset.Generate(dataset.Options{Samples: dataset.DefaultOptions().Samples, Seed: opts.seed})
	} else {
		var err error
		if rows, err = dataset.Load(opts.dataPath); err != nil {
			return classifier.Metrics{}, fmt.Errorf("dataset.Load() > %w", err)
		}
	}

	train, test, err := classifier.StratifiedSplit(dataset.Samples(rows), opts.testRatio, opts.seed)
	if err != nil {
		return classifier.Metrics{}, fmt.Errorf("classifier.StratifiedSplit() > %w", err)
	}

	var model classifier.Classifier
	treeOpts := classifier.DefaultTreeOptions()
	switch classifier.Kind(opts.kind) {
	case classifier.KindLogisticRegression:
		model, err = classifier.TrainLogisticRegression(train, classifier.DefaultLogisticOptions())
	default:
		model, err = classifier.TrainDecisionTree(train, treeOpts)
	}
	if err != nil {
		return classifier.Metrics{}, fmt.Errorf("train %s: %w", opts.kind, err)
	}

	metrics, err := classifier.Evaluate(model, test)
	if err != nil {
		return classifier.Metrics{}, fmt.Errorf("classifier.Evaluate() > %w", err)
	}

	artifact, err := classifier.ArtifactOf(model, trainedAt)
	if err != nil {
		return classifier.Metrics{}, fmt.Errorf("classifier.ArtifactOf() > %w", err)
	}
	if artifact.Tree != nil {
		artifact.Tree.MaxDepth = treeOpts.MaxDepth
		artifact.Tree.MinSamplesSplit = treeOpts.MinSamplesSplit
		artifact.Tree.MinSamplesLeaf = treeOpts.MinSamplesLeaf
	}
	artifact.Metrics = &metrics
	if err := classifier.Save(opts.outPath, artifact); err != nil {
		return classifier.Metrics{}, fmt.Errorf("classifier.Save() > %w", err)
	}
	return metrics, nil
}
