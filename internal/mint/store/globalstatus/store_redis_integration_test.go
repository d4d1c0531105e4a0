//go:build integration

package globalstatus_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"mintgate/internal/mint/store/globalstatus"
	id "mintgate/pkg/domain"
	"mintgate/pkg/testutil/containers"
)

// =============================================================================
// Redis Global Status Store Integration Suite
// =============================================================================

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *globalstatus.RedisGlobalStatusStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = globalstatus.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestGet_UnknownIdentity() {
	status, err := s.store.Get(context.Background(), "wallet-1")
	s.Require().NoError(err)
	s.Nil(status)
}

func (s *RedisStoreSuite) TestMarkAdmitted_FirstWriterWins() {
	ctx := context.Background()

	status, err := s.store.MarkAdmitted(ctx, "wallet-1", "replica-a")
	s.Require().NoError(err)
	s.True(status.Admitted)
	s.Equal(id.ReplicaID("replica-a"), status.Origin)

	// A later merge from another replica never rewrites the origin.
	status, err = s.store.MarkAdmitted(ctx, "wallet-1", "replica-b")
	s.Require().NoError(err)
	s.True(status.Admitted)
	s.Equal(id.ReplicaID("replica-a"), status.Origin)
}

// TestMarkAdmitted_ConcurrentMerges verifies that concurrent merges from many
// replicas still leave exactly one origin and the flag set.
func (s *RedisStoreSuite) TestMarkAdmitted_ConcurrentMerges() {
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			origin := id.ReplicaID("replica-" + string(rune('a'+n%5)))
			_, err := s.store.MarkAdmitted(ctx, "wallet-1", origin)
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	status, err := s.store.Get(ctx, "wallet-1")
	s.Require().NoError(err)
	s.Require().NotNil(status)
	s.True(status.Admitted)
	s.NotEmpty(status.Origin)
}

func (s *RedisStoreSuite) TestCountSync_Accumulates() {
	ctx := context.Background()

	for range 3 {
		_, err := s.store.CountSync(ctx, "wallet-1", 2)
		s.Require().NoError(err)
	}
	status, err := s.store.CountSync(ctx, "wallet-1", 7)
	s.Require().NoError(err)

	s.Equal(uint64(3), status.PoolSyncs[2])
	s.Equal(uint64(1), status.PoolSyncs[7])
	s.False(status.Admitted)
}

func (s *RedisStoreSuite) TestReset_ClearsBothKeys() {
	ctx := context.Background()

	_, err := s.store.MarkAdmitted(ctx, "wallet-1", "replica-a")
	s.Require().NoError(err)
	_, err = s.store.CountSync(ctx, "wallet-1", 1)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Reset(ctx, "wallet-1"))

	status, err := s.store.Get(ctx, "wallet-1")
	s.Require().NoError(err)
	s.Nil(status)
}
