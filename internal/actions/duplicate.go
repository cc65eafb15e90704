package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/gkobilansky/abreport/internal/form"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/google/uuid"
)

const copySuffix = " (copy)"

// StoreDuplicator copies a test's definition into the same store. The copy
// gets a fresh id and timestamps and starts without results or report.
type StoreDuplicator struct {
	Store store.Store
	Now   func() time.Time
	NewID func() string
}

func NewStoreDuplicator(s store.Store) *StoreDuplicator {
	return &StoreDuplicator{
		Store: s,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (d *StoreDuplicator) Duplicate(ctx context.Context, id string) (*store.Test, error) {
	src, err := d.Store.GetTest(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := form.FromTest(src)
	draft.SetName(src.Name + copySuffix)

	test, err := draft.Build(d.NewID(), d.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to build copy of %s: %w", id, err)
	}

	created, err := d.Store.CreateTest(ctx, test)
	if err != nil {
		return nil, fmt.Errorf("failed to create copy of %s: %w", id, err)
	}

	return created, nil
}
