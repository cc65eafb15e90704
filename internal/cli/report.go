package cli

import (
	"context"
	"fmt"

	"github.com/gkobilansky/abreport/internal/report"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/spf13/cobra"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Print a test report",
	Long: `Print the report for a test.

Formats:
  detailed   every section (default)
  summary    key metrics and recommendations
  executive  overall outcome and next steps

Examples:
  abreport report 1
  abreport report 1 --format executive`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", string(report.FormatDetailed), "report format (detailed, summary or executive)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return withStore(cfg, func(s store.Store) error {
		test, err := s.GetTest(context.Background(), id)
		if err != nil {
			return notFound(id, err)
		}

		if err := report.WriteText(cmd.OutOrStdout(), report.Build(test, now()), report.ParseFormat(reportFormat)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	})
}
