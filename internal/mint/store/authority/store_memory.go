package authority

import (
	"context"
	"sync"

	dErrors "mintgate/pkg/domain-errors"
)

// InMemoryAuthorityStore holds the admin capability holder. Seeded from
// config at startup; replaced only through an explicit transfer.
type InMemoryAuthorityStore struct {
	mu     sync.RWMutex
	holder string
}

func New(initial string) *InMemoryAuthorityStore {
	return &InMemoryAuthorityStore{holder: initial}
}

func (s *InMemoryAuthorityStore) Current(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.holder, nil
}

func (s *InMemoryAuthorityStore) Transfer(_ context.Context, newHolder string) error {
	if newHolder == "" {
		return dErrors.New(dErrors.CodeBadRequest, "new authority holder cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holder = newHolder
	return nil
}
