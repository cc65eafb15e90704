package store

import "context"

// Provider is the read side every view is built on.
type Provider interface {
	ListTests(ctx context.Context) ([]*Test, error)
	GetTest(ctx context.Context, id string) (*Test, error)
}

// Store defines the interface for test storage operations
type Store interface {
	Provider

	// CreateTest validates and stores t. It fails with a *ValidationError
	// for malformed definitions.
	CreateTest(ctx context.Context, t *Test) (*Test, error)

	// Lifecycle
	Close() error
}
