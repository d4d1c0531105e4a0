// Package admission implements the local admission controller: the single
// entry point deciding, atomically per replica, whether an identity may mint
// from a pool.
package admission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	mintconfig "mintgate/internal/mint/config"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/platform/metrics"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"

	dErrors "mintgate/pkg/domain-errors"
)

// Type aliases for shared interfaces.
type (
	PoolStore         = ports.PoolStore
	AllowlistStore    = ports.AllowlistStore
	MintRecordStore   = ports.MintRecordStore
	GlobalStatusStore = ports.GlobalStatusStore
	AuditPublisher    = ports.AuditPublisher
)

type Service struct {
	config    *mintconfig.Config
	pools     PoolStore
	allowlist AllowlistStore
	records   MintRecordStore
	status    GlobalStatusStore
	refunder  ports.Refunder
	notifier  ports.PeerNotifier

	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	replicaID      id.ReplicaID

	// enabled is the engine-wide switch; individual pools carry their own.
	enabled atomic.Bool

	// guard serializes admissions and rejects reentrant attempts. A refund
	// hook that calls back into Admit fails TryLock instead of observing
	// half-committed state.
	guard sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithRefunder(refunder ports.Refunder) Option {
	return func(s *Service) {
		s.refunder = refunder
	}
}

func WithNotifier(notifier ports.PeerNotifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithConfig(cfg *mintconfig.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(
	replicaID id.ReplicaID,
	pools PoolStore,
	allowlist AllowlistStore,
	records MintRecordStore,
	status GlobalStatusStore,
	opts ...Option,
) (*Service, error) {
	if replicaID.IsZero() {
		return nil, fmt.Errorf("replica id is required")
	}
	if pools == nil {
		return nil, fmt.Errorf("pool store is required")
	}
	if allowlist == nil {
		return nil, fmt.Errorf("allowlist store is required")
	}
	if records == nil {
		return nil, fmt.Errorf("mint record store is required")
	}
	if status == nil {
		return nil, fmt.Errorf("global status store is required")
	}

	svc := &Service{
		config:    mintconfig.DefaultConfig(),
		pools:     pools,
		allowlist: allowlist,
		records:   records,
		status:    status,
		replicaID: replicaID,
	}
	svc.enabled.Store(true)

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// SetEnabled flips the engine-wide admission switch.
func (s *Service) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

// Enabled reports the engine-wide admission switch.
func (s *Service) Enabled() bool {
	return s.enabled.Load()
}

// Admit runs the full admission sequence for one request. Preconditions are
// checked in a fixed order with no partial mutation on failure; on success the
// counters are committed strictly before any refund is issued and before peers
// are notified, so nothing outside this replica can observe stale state.
func (s *Service) Admit(ctx context.Context, poolID id.PoolID, identity id.Identity, units, payment uint64) (*models.AdmissionReceipt, error) {
	if !s.guard.TryLock() {
		return nil, s.reject(ctx, poolID, identity, dErrors.New(dErrors.CodeAdmissionBusy, "another admission is in progress"))
	}
	defer s.guard.Unlock()

	if identity.IsZero() {
		return nil, s.reject(ctx, poolID, identity, dErrors.New(dErrors.CodeBadRequest, "identity is required"))
	}
	if units == 0 {
		return nil, s.reject(ctx, poolID, identity, dErrors.New(dErrors.CodeBadRequest, "units must be positive"))
	}

	pool, err := s.loadPool(ctx, poolID)
	if err != nil {
		return nil, s.reject(ctx, poolID, identity, err)
	}

	if err := s.checkPreconditions(ctx, pool, identity, units, payment); err != nil {
		return nil, s.reject(ctx, poolID, identity, err)
	}

	// Commit point: counters first. Any failure past the first increment is
	// surfaced as internal; the pool store's own capacity guard makes the
	// increments safe to re-check.
	if _, err := s.pools.IncrementMinted(ctx, poolID, units); err != nil {
		return nil, s.reject(ctx, poolID, identity, err)
	}
	if _, err := s.records.Increment(ctx, poolID, identity, units); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mint record increment failed after pool commit")
	}
	if _, err := s.status.MarkAdmitted(ctx, identity, s.replicaID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "global status merge failed after pool commit")
	}

	price := pool.UnitPrice * units
	receipt := &models.AdmissionReceipt{
		Pool:      poolID,
		Identity:  identity,
		Units:     units,
		PricePaid: price,
		Refund:    payment - price,
	}

	// Outward value movement only after all state mutation.
	if receipt.Refund > 0 && s.refunder != nil {
		if err := s.refunder.Refund(ctx, identity, receipt.Refund); err != nil {
			// The admission is committed; a failed refund is logged for
			// reconciliation, never rolled back.
			if s.logger != nil {
				s.logger.WarnContext(ctx, "refund failed after admission commit",
					"pool", poolID, "identity", identity, "refund", receipt.Refund, "error", err)
			}
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyPeers(ctx, identity, poolID)
	}

	if s.metrics != nil {
		s.metrics.AdmissionsGranted.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category: audit.CategoryOperations,
		Action:   audit.ActionAdmissionGranted,
		Identity: identity,
		Pool:     poolID,
		Replica:  s.replicaID,
		Amount:   units,
	},
		"pool", poolID,
		"identity", identity,
		"units", units,
		"refund", receipt.Refund,
	)

	return receipt, nil
}

// loadPool resolves the pool, folding range violations and undefined pools
// into the invalid-pool rejection.
func (s *Service) loadPool(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	if !s.config.ValidPool(poolID) {
		return nil, dErrors.Newf(dErrors.CodeInvalidPool, "pool %d is outside the valid range", poolID)
	}
	pool, err := s.pools.Get(ctx, poolID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.Newf(dErrors.CodeInvalidPool, "pool %d is not defined", poolID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
	}
	return pool, nil
}

// checkPreconditions enforces the ordered admission checks. It performs reads
// only; mutation happens after all checks pass.
func (s *Service) checkPreconditions(ctx context.Context, pool *models.Pool, identity id.Identity, units, payment uint64) error {
	if !s.enabled.Load() || !pool.Enabled {
		return dErrors.Newf(dErrors.CodePoolDisabled, "pool %d is disabled", pool.ID)
	}

	if pool.Restricted {
		allowed, err := s.allowlist.IsAllowed(ctx, pool.ID, identity)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "allowlist check failed")
		}
		if !allowed {
			return dErrors.Newf(dErrors.CodeNotAllowed, "identity is not allow-listed for pool %d", pool.ID)
		}
	}

	record, err := s.records.Get(ctx, pool.ID, identity)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mint record lookup failed")
	}
	var minted uint64
	if record != nil {
		minted = record.Count
	}
	if minted+units > pool.PerWalletLimit {
		return dErrors.Newf(dErrors.CodeLimitExceeded, "per-wallet limit %d reached for pool %d", pool.PerWalletLimit, pool.ID)
	}

	// Strict headroom test: equality of remaining and request passes, any
	// shortfall rejects.
	if pool.Capacity-pool.Minted < units {
		return dErrors.Newf(dErrors.CodeCapacityExceeded, "pool %d has %d units remaining", pool.ID, pool.Remaining())
	}

	if payment < pool.UnitPrice*units {
		return dErrors.Newf(dErrors.CodeInsufficientPayment, "payment %d does not cover price %d", payment, pool.UnitPrice*units)
	}

	return nil
}

// reject records the rejection and returns the error unchanged.
func (s *Service) reject(ctx context.Context, poolID id.PoolID, identity id.Identity, err error) error {
	code := dErrors.CodeOf(err)
	if s.metrics != nil {
		s.metrics.AdmissionsRejected.WithLabelValues(string(code)).Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "admission rejected",
			"pool", poolID, "identity", identity, "reason", code)
	}
	return err
}
