package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/gkobilansky/abreport/internal/actions"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/spf13/cobra"
)

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy a test definition into a new test",
	Long: `Copy a test's definition into a new test with a fresh id.
Results and the written report are not copied.

Example:
  abreport duplicate 1 --store sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runDuplicate,
}

func init() {
	rootCmd.AddCommand(duplicateCmd)
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return withStore(cfg, func(s store.Store) error {
		d := actions.NewStoreDuplicator(s)
		d.Now = now

		dup, err := d.Duplicate(context.Background(), id)
		if errors.Is(err, store.ErrNotFound) {
			return notFound(id, err)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created test '%s' (id %s)\n", dup.Name, dup.ID)
		warnIfEphemeral(cmd, cfg.Store.Driver)
		return nil
	})
}
