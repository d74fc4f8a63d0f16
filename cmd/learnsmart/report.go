package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/learnsmart/internal/cli"
	"github.com/at-ishikawa/learnsmart/internal/dashboard"
	"github.com/at-ishikawa/learnsmart/internal/pdf"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

func newReportCommand() *cobra.Command {
	var userID int64
	var pdfPath string
	var output outputFlag

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the dashboard of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			logs, err := studylog.NewDBStudyLogRepository(db).FindByUser(ctx, userID, dashboard.HistoryLimit)
			if err != nil {
				return fmt.Errorf("FindByUser() > %w", err)
			}
			predictions, err := studylog.NewDBPredictionRepository(db).FindByUser(ctx, userID, dashboard.HistoryLimit)
			if err != nil {
				return fmt.Errorf("FindByUser() > %w", err)
			}
			d := dashboard.Build(logs, predictions)

			if pdfPath != "" {
				path, err := pdf.WriteReport(pdfPath, cli.ReportMarkdown(userID, d))
				if err != nil {
					return fmt.Errorf("pdf.WriteReport() > %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "PDF generated: %s\n", path)
				return err
			}
			return cli.NewPrinter(cmd.OutOrStdout(), cli.Format(output)).PrintDashboard(userID, d)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Write the report to this markdown file and a PDF next to it")
	addOutputFlag(cmd.Flags(), &output)
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
