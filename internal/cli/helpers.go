package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/gkobilansky/abreport/internal/config"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/spf13/cobra"
)

// withStore opens the configured store, executes the function, and handles
// cleanup. The memory store starts out holding the sample tests.
func withStore(cfg *config.Config, fn func(store.Store) error) error {
	s, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := store.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, nil
	default:
		tests, err := store.SampleTests()
		if err != nil {
			return nil, fmt.Errorf("failed to load sample tests: %w", err)
		}
		return store.NewMemoryStore(tests...), nil
	}
}

// notFound rewrites a missing-test error for the terminal.
func notFound(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("test '%s' not found", id)
	}
	return fmt.Errorf("failed to get test: %w", err)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// warnIfEphemeral tells the user a write will be lost on exit.
func warnIfEphemeral(cmd *cobra.Command, driver string) {
	if driver == config.DriverMemory {
		fmt.Fprintln(cmd.ErrOrStderr(), "Note: the memory store does not persist. Use --store sqlite to keep it.")
	}
}
