package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/gkobilansky/abreport/internal/config"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample tests into the database",
	Long: `Load the bundled sample tests into the SQLite database. Tests whose id
already exists are left alone, so seeding twice is harmless.

Example:
  abreport seed --db ./abreport.db`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.DriverSQLite {
		return fmt.Errorf("seed writes to the sqlite store. Use: abreport seed --db <path>")
	}

	samples, err := store.SampleTests()
	if err != nil {
		return fmt.Errorf("failed to load sample tests: %w", err)
	}

	return withStore(cfg, func(s store.Store) error {
		created, err := seed(context.Background(), s, samples)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d of %d sample tests into %s\n", created, len(samples), cfg.Store.Path)
		return nil
	})
}

// seed inserts every test whose id is not yet taken and returns how many
// it inserted.
func seed(ctx context.Context, s store.Store, tests []*store.Test) (int, error) {
	created := 0
	for _, t := range tests {
		_, err := s.GetTest(ctx, t.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return created, fmt.Errorf("failed to check test %s: %w", t.ID, err)
		}

		if _, err := s.CreateTest(ctx, t); err != nil {
			return created, fmt.Errorf("failed to seed test %s: %w", t.ID, err)
		}
		created++
	}
	return created, nil
}
