package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps tests in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	tests map[string]*Test
}

// NewMemoryStore returns a store holding copies of the given tests.
func NewMemoryStore(tests ...*Test) *MemoryStore {
	s := &MemoryStore{tests: make(map[string]*Test, len(tests))}
	for _, t := range tests {
		s.tests[t.ID] = t.Clone()
	}
	return s
}

func (s *MemoryStore) CreateTest(ctx context.Context, t *Test) (*Test, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tests[t.ID]; exists {
		return nil, fmt.Errorf("failed to insert test: id %q already exists", t.ID)
	}
	s.tests[t.ID] = t.Clone()

	return t.Clone(), nil
}

func (s *MemoryStore) GetTest(ctx context.Context, id string) (*Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tests[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return t.Clone(), nil
}

// ListTests returns tests newest first, matching the SQLite ordering.
func (s *MemoryStore) ListTests(ctx context.Context) ([]*Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tests := make([]*Test, 0, len(s.tests))
	for _, t := range s.tests {
		tests = append(tests, t.Clone())
	}

	sort.Slice(tests, func(i, j int) bool {
		if tests[i].CreatedAt.Equal(tests[j].CreatedAt) {
			return tests[i].ID < tests[j].ID
		}
		return tests[i].CreatedAt.After(tests[j].CreatedAt)
	})

	return tests, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
