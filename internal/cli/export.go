package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/gkobilansky/abreport/internal/actions"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/spf13/cobra"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a test report",
	Long: `Export a test's key metrics as CSV or the whole test document as JSON.

Examples:
  abreport export 1 --format csv > hero-metrics.csv
  abreport export 1 --format json > hero.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", actions.FormatCSV, "output format (csv or json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return withStore(cfg, func(s store.Store) error {
		ctx := context.Background()

		// Verify test exists
		test, err := s.GetTest(ctx, id)
		if err != nil {
			return notFound(id, err)
		}

		downloader := &actions.ExportDownloader{Now: now}
		err = downloader.Download(ctx, cmd.OutOrStdout(), test, exportFormat)
		if errors.Is(err, actions.ErrNotImplemented) {
			return fmt.Errorf("%s export is %w", exportFormat, err)
		}
		return err
	})
}
