package globalstatus

import (
	"context"
	"sync"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"
)

// InMemoryGlobalStatusStore keeps this replica's copy of the replicated
// admitted flag in memory.
type InMemoryGlobalStatusStore struct {
	mu       sync.RWMutex
	statuses map[id.Identity]*models.GlobalMintStatus
}

func New() *InMemoryGlobalStatusStore {
	return &InMemoryGlobalStatusStore{
		statuses: make(map[id.Identity]*models.GlobalMintStatus),
	}
}

func (s *InMemoryGlobalStatusStore) Get(_ context.Context, identity id.Identity) (*models.GlobalMintStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, exists := s.statuses[identity]
	if !exists {
		return nil, nil
	}
	return cloneStatus(status), nil
}

func (s *InMemoryGlobalStatusStore) MarkAdmitted(_ context.Context, identity id.Identity, origin id.ReplicaID) (*models.GlobalMintStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.getOrCreate(identity)
	status.MarkAdmitted(origin)
	return cloneStatus(status), nil
}

func (s *InMemoryGlobalStatusStore) CountSync(_ context.Context, identity id.Identity, pool id.PoolID) (*models.GlobalMintStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.getOrCreate(identity)
	status.CountSync(pool)
	return cloneStatus(status), nil
}

func (s *InMemoryGlobalStatusStore) Reset(_ context.Context, identity id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.statuses, identity)
	return nil
}

func (s *InMemoryGlobalStatusStore) getOrCreate(identity id.Identity) *models.GlobalMintStatus {
	status, exists := s.statuses[identity]
	if !exists {
		status = &models.GlobalMintStatus{Identity: identity}
		s.statuses[identity] = status
	}
	return status
}

func cloneStatus(status *models.GlobalMintStatus) *models.GlobalMintStatus {
	cp := *status
	if status.PoolSyncs != nil {
		cp.PoolSyncs = make(map[id.PoolID]uint64, len(status.PoolSyncs))
		for pool, count := range status.PoolSyncs {
			cp.PoolSyncs[pool] = count
		}
	}
	return &cp
}
