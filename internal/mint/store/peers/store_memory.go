package peers

import (
	"context"
	"sync"

	id "mintgate/pkg/domain"

	dErrors "mintgate/pkg/domain-errors"
)

// InMemoryPeerStore keeps the trusted-peer table in memory. An absent entry
// means the permissive default applies to that source replica.
type InMemoryPeerStore struct {
	mu    sync.RWMutex
	peers map[id.ReplicaID]id.Identity
}

func New() *InMemoryPeerStore {
	return &InMemoryPeerStore{
		peers: make(map[id.ReplicaID]id.Identity),
	}
}

func (s *InMemoryPeerStore) Expected(_ context.Context, replica id.ReplicaID) (id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.peers[replica], nil
}

func (s *InMemoryPeerStore) Set(_ context.Context, replica id.ReplicaID, identity id.Identity) error {
	if replica.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "replica id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.peers[replica] = identity
	return nil
}

func (s *InMemoryPeerStore) Remove(_ context.Context, replica id.ReplicaID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.peers, replica)
	return nil
}

func (s *InMemoryPeerStore) List(_ context.Context) (map[id.ReplicaID]id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.ReplicaID]id.Identity, len(s.peers))
	for replica, identity := range s.peers {
		out[replica] = identity
	}
	return out, nil
}
