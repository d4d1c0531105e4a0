package pool

import (
	"context"
	"sync"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"

	dErrors "mintgate/pkg/domain-errors"
)

// InMemoryPoolStore keeps pool definitions in memory.
type InMemoryPoolStore struct {
	mu    sync.RWMutex
	pools map[id.PoolID]*models.Pool
}

func New() *InMemoryPoolStore {
	return &InMemoryPoolStore{
		pools: make(map[id.PoolID]*models.Pool),
	}
}

func (s *InMemoryPoolStore) Get(_ context.Context, poolID id.PoolID) (*models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.pools[poolID]
	if !exists {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "pool not defined")
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryPoolStore) Put(_ context.Context, pool *models.Pool) error {
	if pool == nil {
		return dErrors.New(dErrors.CodeBadRequest, "pool is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *pool
	s.pools[pool.ID] = &cp
	return nil
}

func (s *InMemoryPoolStore) IncrementMinted(_ context.Context, poolID id.PoolID, amount uint64) (*models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.pools[poolID]
	if !exists {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "pool not defined")
	}
	// Last-line defense for the minted <= capacity invariant; the admission
	// controller checks headroom before calling.
	if p.Capacity-p.Minted < amount {
		return nil, dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeCapacityExceeded, "minted count would exceed capacity")
	}
	p.Minted += amount
	cp := *p
	return &cp, nil
}

func (s *InMemoryPoolStore) SetEnabled(_ context.Context, poolID id.PoolID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.pools[poolID]
	if !exists {
		return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "pool not defined")
	}
	p.Enabled = enabled
	return nil
}

func (s *InMemoryPoolStore) List(_ context.Context) ([]*models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]*models.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		cp := *p
		pools = append(pools, &cp)
	}
	return pools, nil
}
