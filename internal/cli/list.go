package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gkobilansky/abreport/internal/report"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tests",
	Long:  `List all A/B tests with their status, outcome and traffic split.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return withStore(cfg, func(s store.Store) error {
		tests, err := s.ListTests(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list tests: %w", err)
		}
		return printTests(cmd.OutOrStdout(), tests, now())
	})
}

func printTests(out io.Writer, tests []*store.Test, at time.Time) error {
	if len(tests) == 0 {
		fmt.Fprintln(out, "No tests yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Create one with:")
		fmt.Fprintln(out, "  abreport new")
		return nil
	}

	// Print table
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tOUTCOME\tSPLIT\tPERIOD")

	for _, test := range tests {
		v := report.Build(test, at)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID,
			v.Title,
			strings.ToUpper(string(v.Status)),
			v.Winner,
			v.Split,
			v.Period,
		)
	}

	return w.Flush()
}
