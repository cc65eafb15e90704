// Package actions holds the side actions offered next to a test: duplicate,
// download and share. Each is a capability interface so a deployment can
// swap implementations; actions that have no implementation yet return
// ErrNotImplemented instead of silently doing nothing.
package actions

import (
	"context"
	"errors"
	"io"

	"github.com/gkobilansky/abreport/internal/store"
)

// ErrNotImplemented is returned by actions that exist in the UI but have no
// working implementation in this build.
var ErrNotImplemented = errors.New("not yet implemented")

// Duplicator copies a test definition into a new test.
type Duplicator interface {
	Duplicate(ctx context.Context, id string) (*store.Test, error)
}

// Downloader writes a test's report in a downloadable format.
type Downloader interface {
	Download(ctx context.Context, w io.Writer, t *store.Test, format string) error
	ContentType(format string) string
}

// Sharer publishes a report and returns the link to it.
type Sharer interface {
	Share(ctx context.Context, t *store.Test) (string, error)
}

// Unshared is the Sharer used until a sharing backend exists.
type Unshared struct{}

func (Unshared) Share(ctx context.Context, t *store.Test) (string, error) {
	return "", ErrNotImplemented
}
