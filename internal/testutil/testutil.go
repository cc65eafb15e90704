package testutil

import (
	"path/filepath"
	"testing"

	"github.com/gkobilansky/abreport/internal/store"
)

// SetupTestStore creates a test database and returns the store.
// Uses t.TempDir() for automatic cleanup on test completion.
func SetupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// SampleTests returns the bundled sample tests or fails the test.
func SampleTests(t *testing.T) []*store.Test {
	t.Helper()

	tests, err := store.SampleTests()
	if err != nil {
		t.Fatalf("failed to load sample tests: %v", err)
	}
	return tests
}

// SampleStore returns an in-memory store seeded with the sample tests.
func SampleStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	return store.NewMemoryStore(SampleTests(t)...)
}
