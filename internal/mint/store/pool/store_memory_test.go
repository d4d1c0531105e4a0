package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mintgate/internal/mint/models"
	"mintgate/pkg/platform/sentinel"

	dErrors "mintgate/pkg/domain-errors"
)

// =============================================================================
// In-Memory Pool Store Test Suite
// =============================================================================

type PoolStoreSuite struct {
	suite.Suite
	store *InMemoryPoolStore
}

func TestPoolStoreSuite(t *testing.T) {
	suite.Run(t, new(PoolStoreSuite))
}

func (s *PoolStoreSuite) SetupTest() {
	s.store = New()
}

func (s *PoolStoreSuite) seed(capacity uint64) *models.Pool {
	pool, err := models.NewPool(1, capacity, 1, 5, false)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Put(context.Background(), pool))
	return pool
}

func (s *PoolStoreSuite) TestGetPut() {
	ctx := context.Background()

	s.Run("unknown pool returns not found", func() {
		_, err := s.store.Get(ctx, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stored pool reads back as a copy", func() {
		s.seed(10)

		got, err := s.store.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(uint64(10), got.Capacity)

		// Mutating the returned copy must not leak into the store.
		got.Minted = 99
		again, err := s.store.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(uint64(0), again.Minted)
	})
}

func (s *PoolStoreSuite) TestIncrementMinted() {
	ctx := context.Background()

	s.Run("increment within headroom succeeds", func() {
		s.seed(10)

		pool, err := s.store.IncrementMinted(ctx, 1, 4)
		s.Require().NoError(err)
		s.Equal(uint64(4), pool.Minted)
	})

	s.Run("increment past capacity is refused", func() {
		s.SetupTest()
		s.seed(10)
		_, err := s.store.IncrementMinted(ctx, 1, 9)
		s.Require().NoError(err)

		_, err = s.store.IncrementMinted(ctx, 1, 2)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeCapacityExceeded))

		pool, err := s.store.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(uint64(9), pool.Minted)
	})

	s.Run("increment equal to headroom fills the pool", func() {
		s.SetupTest()
		s.seed(10)

		pool, err := s.store.IncrementMinted(ctx, 1, 10)
		s.Require().NoError(err)
		s.Equal(uint64(10), pool.Minted)
		s.Equal(uint64(0), pool.Remaining())
	})
}
