package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gkobilansky/abreport/internal/store"
	"github.com/gkobilansky/abreport/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Both stores satisfy the same contract.
var (
	_ store.Store = (*store.MemoryStore)(nil)
	_ store.Store = (*store.SQLiteStore)(nil)
)

func TestMemory_GetTest(t *testing.T) {
	s := testutil.SampleStore(t)
	ctx := context.Background()

	test, err := s.GetTest(ctx, "1")
	if err != nil {
		t.Fatalf("failed to get test: %v", err)
	}
	if test.Name != "Homepage Hero Section Test" {
		t.Errorf("got name %q", test.Name)
	}

	_, err = s.GetTest(ctx, "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	s := testutil.SampleStore(t)
	ctx := context.Background()

	test, err := s.GetTest(ctx, "1")
	if err != nil {
		t.Fatalf("failed to get test: %v", err)
	}
	test.Name = "changed"
	test.TargetAudience[0] = "changed"
	test.Results.Overall.Winner = store.WinnerA
	test.Report.NextSteps[0] = "changed"

	again, err := s.GetTest(ctx, "1")
	if err != nil {
		t.Fatalf("failed to get test: %v", err)
	}
	if again.Name == "changed" || again.TargetAudience[0] == "changed" ||
		again.Results.Overall.Winner != store.WinnerB || again.Report.NextSteps[0] == "changed" {
		t.Error("mutating a returned test changed the stored one")
	}
}

func TestMemory_CreateTest(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	want := newTest("t-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	got, err := s.CreateTest(ctx, want)
	if err != nil {
		t.Fatalf("failed to create test: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("create mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.CreateTest(ctx, want); err == nil {
		t.Error("expected error for duplicate id")
	}

	invalid := newTest("t-2", time.Now())
	invalid.TestURL = ""
	var verr *store.ValidationError
	if _, err := s.CreateTest(ctx, invalid); !errors.As(err, &verr) {
		t.Errorf("expected *ValidationError, got %v", err)
	}
}

func TestMemory_MatchesSQLite(t *testing.T) {
	ctx := context.Background()
	mem := testutil.SampleStore(t)
	db := testutil.SetupTestStore(t)

	for _, test := range testutil.SampleTests(t) {
		if _, err := db.CreateTest(ctx, test); err != nil {
			t.Fatalf("failed to seed sqlite: %v", err)
		}
	}

	fromMem, err := mem.ListTests(ctx)
	if err != nil {
		t.Fatalf("failed to list memory tests: %v", err)
	}
	fromDB, err := db.ListTests(ctx)
	if err != nil {
		t.Fatalf("failed to list sqlite tests: %v", err)
	}

	if diff := cmp.Diff(fromMem, fromDB, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("providers disagree (-memory +sqlite):\n%s", diff)
	}
}
