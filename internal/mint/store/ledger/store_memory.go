package ledger

import (
	"context"
	"sync"

	id "mintgate/pkg/domain"
)

// InMemoryLedgerStore mirrors cross-replica transfer bookkeeping. Balances
// are signed: a debit mirror can land before its matching credit has ever
// been observed locally, and reconciliation is the external accounting
// system's job.
type InMemoryLedgerStore struct {
	mu       sync.RWMutex
	balances map[id.Identity]int64
}

func New() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		balances: make(map[id.Identity]int64),
	}
}

func (s *InMemoryLedgerStore) Credit(_ context.Context, identity id.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[identity] += int64(amount)
	return nil
}

func (s *InMemoryLedgerStore) Debit(_ context.Context, identity id.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[identity] -= int64(amount)
	return nil
}

func (s *InMemoryLedgerStore) Balance(_ context.Context, identity id.Identity) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[identity], nil
}
