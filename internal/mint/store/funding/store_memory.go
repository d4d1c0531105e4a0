package funding

import (
	"context"
	"sync"

	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
)

// InMemoryFundingStore tracks the replica's outbound-fee balance in memory.
type InMemoryFundingStore struct {
	mu      sync.RWMutex
	balance uint64
}

func New(initial uint64) *InMemoryFundingStore {
	return &InMemoryFundingStore{balance: initial}
}

func (s *InMemoryFundingStore) Balance(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balance, nil
}

func (s *InMemoryFundingStore) Deposit(_ context.Context, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balance += amount
	return nil
}

func (s *InMemoryFundingStore) Withdraw(_ context.Context, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance < amount {
		return dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeInvariantViolation, "funding balance does not cover amount")
	}
	s.balance -= amount
	return nil
}
