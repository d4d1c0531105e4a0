package globalstatus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"
)

var markAdmittedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "mintgate_global_status_merge_duration_ms",
	Help:    "Latency of global status merges in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const (
	statusKeyPrefix = "gms:flag:"
	syncsKeyPrefix  = "gms:syncs:"
)

// RedisGlobalStatusStore is a Redis-backed implementation of the global
// status store. Recommended where the replica must survive restarts without
// losing its copy of the replicated flag; the merge stays idempotent because
// the flag fields are written with HSETNX.
type RedisGlobalStatusStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed global status store.
func NewRedis(client *redis.Client) *RedisGlobalStatusStore {
	return &RedisGlobalStatusStore{client: client}
}

func (s *RedisGlobalStatusStore) Get(ctx context.Context, identity id.Identity) (*models.GlobalMintStatus, error) {
	flag, err := s.client.HGetAll(ctx, statusKeyPrefix+identity.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("get global status: %w", err)
	}
	syncs, err := s.client.HGetAll(ctx, syncsKeyPrefix+identity.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("get global status syncs: %w", err)
	}
	if len(flag) == 0 && len(syncs) == 0 {
		return nil, nil
	}

	status := &models.GlobalMintStatus{
		Identity: identity,
		Admitted: flag["admitted"] == "1",
		Origin:   id.ReplicaID(flag["origin"]),
	}
	if len(syncs) > 0 {
		status.PoolSyncs = make(map[id.PoolID]uint64, len(syncs))
		for field, raw := range syncs {
			pool, err := strconv.Atoi(field)
			if err != nil {
				continue
			}
			count, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				continue
			}
			status.PoolSyncs[id.PoolID(pool)] = count
		}
	}
	return status, nil
}

func (s *RedisGlobalStatusStore) MarkAdmitted(ctx context.Context, identity id.Identity, origin id.ReplicaID) (*models.GlobalMintStatus, error) {
	start := time.Now()
	defer func() {
		markAdmittedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	key := statusKeyPrefix + identity.String()
	// HSETNX keeps the merge monotonic: origin records the first admitting
	// replica only, later merges are no-ops.
	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, "admitted", "1")
	pipe.HSetNX(ctx, key, "origin", origin.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("merge global status: %w", err)
	}
	return s.Get(ctx, identity)
}

func (s *RedisGlobalStatusStore) CountSync(ctx context.Context, identity id.Identity, pool id.PoolID) (*models.GlobalMintStatus, error) {
	if pool > 0 {
		key := syncsKeyPrefix + identity.String()
		if err := s.client.HIncrBy(ctx, key, pool.String(), 1).Err(); err != nil {
			return nil, fmt.Errorf("count status sync: %w", err)
		}
	}
	return s.Get(ctx, identity)
}

func (s *RedisGlobalStatusStore) Reset(ctx context.Context, identity id.Identity) error {
	if err := s.client.Del(ctx, statusKeyPrefix+identity.String(), syncsKeyPrefix+identity.String()).Err(); err != nil {
		return fmt.Errorf("reset global status: %w", err)
	}
	return nil
}
