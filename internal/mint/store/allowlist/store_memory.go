package allowlist

import (
	"context"
	"sync"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"

	dErrors "mintgate/pkg/domain-errors"
)

type pairKey struct {
	pool     id.PoolID
	identity id.Identity
}

// InMemoryAllowlistStore keeps (pool, identity) membership in memory.
type InMemoryAllowlistStore struct {
	mu      sync.RWMutex
	entries map[pairKey]*models.AllowlistEntry
}

func New() *InMemoryAllowlistStore {
	return &InMemoryAllowlistStore{
		entries: make(map[pairKey]*models.AllowlistEntry),
	}
}

func (s *InMemoryAllowlistStore) IsAllowed(_ context.Context, pool id.PoolID, identity id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.entries[pairKey{pool: pool, identity: identity}]
	return exists, nil
}

func (s *InMemoryAllowlistStore) Add(_ context.Context, entry *models.AllowlistEntry) error {
	if entry == nil {
		return dErrors.New(dErrors.CodeBadRequest, "allowlist entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.entries[pairKey{pool: entry.Pool, identity: entry.Identity}] = &cp
	return nil
}

func (s *InMemoryAllowlistStore) Remove(_ context.Context, pool id.PoolID, identity id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, pairKey{pool: pool, identity: identity})
	return nil
}

func (s *InMemoryAllowlistStore) List(_ context.Context, pool id.PoolID) ([]*models.AllowlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*models.AllowlistEntry, 0)
	for key, entry := range s.entries {
		if key.pool != pool {
			continue
		}
		cp := *entry
		entries = append(entries, &cp)
	}
	return entries, nil
}
