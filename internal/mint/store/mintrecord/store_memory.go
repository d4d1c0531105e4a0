package mintrecord

import (
	"context"
	"sync"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"
)

type pairKey struct {
	pool     id.PoolID
	identity id.Identity
}

// InMemoryMintRecordStore keeps per (pool, identity) admission counters in
// memory.
type InMemoryMintRecordStore struct {
	mu      sync.RWMutex
	records map[pairKey]*models.MintRecord
}

func New() *InMemoryMintRecordStore {
	return &InMemoryMintRecordStore{
		records: make(map[pairKey]*models.MintRecord),
	}
}

func (s *InMemoryMintRecordStore) Get(_ context.Context, pool id.PoolID, identity id.Identity) (*models.MintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if record, exists := s.records[pairKey{pool: pool, identity: identity}]; exists {
		cp := *record
		return &cp, nil
	}
	return nil, nil
}

func (s *InMemoryMintRecordStore) Increment(_ context.Context, pool id.PoolID, identity id.Identity, amount uint64) (*models.MintRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{pool: pool, identity: identity}
	record, exists := s.records[key]
	if !exists {
		record = &models.MintRecord{Pool: pool, Identity: identity}
		s.records[key] = record
	}
	record.Count += amount
	cp := *record
	return &cp, nil
}

func (s *InMemoryMintRecordStore) Reset(_ context.Context, pool id.PoolID, identity id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, pairKey{pool: pool, identity: identity})
	return nil
}
