package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learnsmart/internal/datasync"
	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

func newHistoryCommand() *cobra.Command {
	historyCommand := &cobra.Command{
		Use:   "history",
		Short: "Export and import study logs as YAML",
	}
	historyCommand.AddCommand(
		newHistoryExportCommand(),
		newHistoryImportCommand(),
	)
	return historyCommand
}

// parseDateFlag parses an optional date flag. An empty value is the zero time.
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := study.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return date, nil
}

func newHistoryExportCommand() *cobra.Command {
	var userID int64
	var from, to, outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the study logs of a user to " + datasync.StudyLogsFile,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := parseDateFlag("from", from)
			if err != nil {
				return err
			}
			toDate, err := parseDateFlag("to", to)
			if err != nil {
				return err
			}
			if fromDate.IsZero() != toDate.IsZero() {
				return fmt.Errorf("--from and --to must be set together")
			}

			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			logs, err := datasync.NewExporter(studylog.NewDBStudyLogRepository(db)).Export(cmd.Context(), userID, fromDate, toDate)
			if err != nil {
				return fmt.Errorf("exporter.Export() > %w", err)
			}
			path, err := datasync.NewYAMLStudyLogSink(outputDir).WriteAll(logs)
			if err != nil {
				return fmt.Errorf("sink.WriteAll() > %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d study logs to %s\n", len(logs), path)
			return err
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	cmd.Flags().StringVar(&from, "from", "", "First study date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last study date, YYYY-MM-DD")
	cmd.Flags().StringVar(&outputDir, "dir", "export", "Output directory")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newHistoryImportCommand() *cobra.Command {
	var opts datasync.ImportOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import study logs from a YAML file written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := datasync.ReadStudyLogs(args[0])
			if err != nil {
				return fmt.Errorf("datasync.ReadStudyLogs() > %w", err)
			}

			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			importer := datasync.NewImporter(studylog.NewDBStudyLogRepository(db), out)
			result, err := importer.Import(cmd.Context(), records, opts)
			if err != nil {
				return fmt.Errorf("importer.Import() > %w", err)
			}

			fmt.Fprintln(out, "\nImport Summary:")
			if opts.DryRun {
				fmt.Fprintln(out, "  (dry-run mode, no changes made)")
			}
			fmt.Fprintf(out, "  Study logs: %d new, %d updated, %d skipped, %d duplicates, %d invalid\n",
				result.New, result.Updated, result.Skipped, result.Duplicate, result.Invalid)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update-existing", false, "Update existing records with new data")
	cmd.Flags().Int64Var(&opts.UserID, "user", 0, "Import every record for this user instead of the user in the file")
	return cmd
}
