package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/learnsmart/internal/analytics"
	"github.com/at-ishikawa/learnsmart/internal/cli"
	"github.com/at-ishikawa/learnsmart/internal/config"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

// outputFlag is the --output flag of commands that print results.
type outputFlag cli.Format

func (f *outputFlag) Set(val string) error {
	format, err := cli.ParseFormat(val)
	if err != nil {
		return err
	}
	*f = outputFlag(format)
	return nil
}

func (f outputFlag) String() string {
	return string(f)
}

func (f *outputFlag) Type() string {
	return "format"
}

var _ pflag.Value = (*outputFlag)(nil)

func addOutputFlag(flags *pflag.FlagSet, output *outputFlag) {
	*output = outputFlag(cli.FormatAuto)
	flags.Var(output, "output", "Output format. Options: auto, text, json")
}

// newEngine builds the engine with the configured model. modelPath overrides the configured path.
func newEngine(cmd *cobra.Command, modelPath string) (*analytics.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	modelCfg := cfg.Model
	if modelPath != "" {
		modelCfg = config.ModelConfig{Path: modelPath, Required: true}
	}
	model, err := analytics.LoadModel(cmd.Context(), modelCfg)
	if err != nil {
		return nil, fmt.Errorf("analytics.LoadModel() > %w", err)
	}
	return analytics.NewEngine(model, analytics.WithSuggestionLimit(cfg.Engine.SuggestionLimit))
}

func newEvaluateCommand() *cobra.Command {
	var record study.StudyRecord
	var date, mood, file, modelPath string
	var concurrency int
	var output outputFlag

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a study day, predict burnout risk and suggest improvements",
		Example: `  learnsmart evaluate --study-hours 10.5 --sleep-hours 4.5 --break-time 0.3 --screen-time 9 --mood Low
  learnsmart evaluate --file records.csv --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd, modelPath)
			if err != nil {
				return err
			}
			printer := cli.NewPrinter(cmd.OutOrStdout(), cli.Format(output))

			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("os.Open(%s) > %w", file, err)
				}
				defer f.Close()

				evaluations, err := cli.RunEvaluateFile(cmd.Context(), engine, f, concurrency)
				if err != nil {
					return fmt.Errorf("cli.RunEvaluateFile() > %w", err)
				}
				return printer.PrintEvaluations(evaluations)
			}

			record.StudyDate = study.NewDate(time.Now())
			if date != "" {
				if record.StudyDate, err = study.ParseDate(date); err != nil {
					return err
				}
			}
			record.Mood = study.MoodLevel(mood)
			if parsed, err := study.ParseMoodLevel(mood); err == nil {
				record.Mood = parsed
			}

			result, err := engine.Evaluate(record)
			if err != nil {
				return err
			}
			return printer.PrintResult(record, result)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&record.StudyHours, "study-hours", 0, "Hours studied")
	flags.Float64Var(&record.SleepHours, "sleep-hours", 0, "Hours slept")
	flags.Float64Var(&record.BreakTime, "break-time", 0, "Hours of breaks")
	flags.Float64Var(&record.ScreenTime, "screen-time", 0, "Hours of screen time")
	flags.StringVar(&mood, "mood", string(study.MoodMedium), "Mood level. Options: Low, Medium, High")
	flags.StringVar(&date, "date", "", "Study date in YYYY-MM-DD format. Defaults to today")
	flags.StringVar(&file, "file", "", "CSV file of records to evaluate instead of the flags")
	flags.IntVar(&concurrency, "concurrency", cli.DefaultConcurrency, "Number of records evaluated in parallel with --file")
	flags.StringVar(&modelPath, "model", "", "Model artifact path. Overrides the configured model")
	addOutputFlag(flags, &output)
	cmd.MarkFlagsMutuallyExclusive("file", "study-hours")
	cmd.MarkFlagsMutuallyExclusive("file", "date")
	return cmd
}
