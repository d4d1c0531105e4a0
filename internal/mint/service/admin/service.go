// Package admin implements the administrative configuration surface. Every
// operation here is a simple setter over the stores; the admission and
// replication logic never mutates configuration itself.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	mintconfig "mintgate/internal/mint/config"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"

	dErrors "mintgate/pkg/domain-errors"
)

// EngineSwitch flips the engine-wide admission enablement.
type EngineSwitch interface {
	SetEnabled(enabled bool)
	Enabled() bool
}

type Service struct {
	config    *mintconfig.Config
	engine    EngineSwitch
	pools     ports.PoolStore
	allowlist ports.AllowlistStore
	records   ports.MintRecordStore
	status    ports.GlobalStatusStore
	peers     ports.PeerStore
	funding   ports.FundingStore
	authority ports.AuthorityStore

	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithConfig(cfg *mintconfig.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// Deps bundles the stores the admin surface mutates.
type Deps struct {
	Engine    EngineSwitch
	Pools     ports.PoolStore
	Allowlist ports.AllowlistStore
	Records   ports.MintRecordStore
	Status    ports.GlobalStatusStore
	Peers     ports.PeerStore
	Funding   ports.FundingStore
	Authority ports.AuthorityStore
}

func New(deps Deps, opts ...Option) (*Service, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine switch is required")
	}
	if deps.Pools == nil {
		return nil, fmt.Errorf("pool store is required")
	}
	if deps.Allowlist == nil {
		return nil, fmt.Errorf("allowlist store is required")
	}
	if deps.Records == nil {
		return nil, fmt.Errorf("mint record store is required")
	}
	if deps.Status == nil {
		return nil, fmt.Errorf("global status store is required")
	}
	if deps.Peers == nil {
		return nil, fmt.Errorf("peer store is required")
	}
	if deps.Funding == nil {
		return nil, fmt.Errorf("funding store is required")
	}
	if deps.Authority == nil {
		return nil, fmt.Errorf("authority store is required")
	}

	svc := &Service{
		config:    mintconfig.DefaultConfig(),
		engine:    deps.Engine,
		pools:     deps.Pools,
		allowlist: deps.Allowlist,
		records:   deps.Records,
		status:    deps.Status,
		peers:     deps.Peers,
		funding:   deps.Funding,
		authority: deps.Authority,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// DefinePool creates or replaces a pool definition. An existing pool keeps
// its minted count.
func (s *Service) DefinePool(ctx context.Context, poolID id.PoolID, capacity, unitPrice, perWalletLimit uint64, restricted bool) (*models.Pool, error) {
	if !s.config.ValidPool(poolID) {
		return nil, dErrors.Newf(dErrors.CodeInvalidPool, "pool %d is outside the valid range", poolID)
	}
	if capacity == 0 {
		capacity = s.config.DefaultCapacity
	}
	if perWalletLimit == 0 {
		perWalletLimit = s.config.DefaultPerWalletLimit
	}

	pool, err := models.NewPool(poolID, capacity, unitPrice, perWalletLimit, restricted)
	if err != nil {
		return nil, err
	}

	if existing, err := s.pools.Get(ctx, poolID); err == nil {
		pool.Minted = existing.Minted
		pool.Enabled = existing.Enabled
		if pool.Capacity < pool.Minted {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "capacity cannot drop below minted count")
		}
	}

	if err := s.pools.Put(ctx, pool); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store pool")
	}
	return pool, nil
}

// SetPoolEnabled flips one pool's individual enablement.
func (s *Service) SetPoolEnabled(ctx context.Context, poolID id.PoolID, enabled bool) error {
	if !s.config.ValidPool(poolID) {
		return dErrors.Newf(dErrors.CodeInvalidPool, "pool %d is outside the valid range", poolID)
	}
	if err := s.pools.SetEnabled(ctx, poolID, enabled); err != nil {
		return err
	}
	s.logAudit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		Action:   "pool_enablement_changed",
		Pool:     poolID,
	}, "pool", poolID, "enabled", enabled)
	return nil
}

// SetEngineEnabled flips the engine-wide admission switch.
func (s *Service) SetEngineEnabled(ctx context.Context, enabled bool) {
	s.engine.SetEnabled(enabled)
	s.logAudit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		Action:   "engine_enablement_changed",
	}, "enabled", enabled)
}

// ListPools returns all defined pools.
func (s *Service) ListPools(ctx context.Context) ([]*models.Pool, error) {
	return s.pools.List(ctx)
}

// AllowIdentity adds an identity to a pool's allow-list.
func (s *Service) AllowIdentity(ctx context.Context, poolID id.PoolID, identity id.Identity, createdBy string) (*models.AllowlistEntry, error) {
	entry, err := models.NewAllowlistEntry(poolID, identity, createdBy)
	if err != nil {
		return nil, err
	}
	if err := s.allowlist.Add(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store allowlist entry")
	}
	return entry, nil
}

// DisallowIdentity removes an identity from a pool's allow-list.
func (s *Service) DisallowIdentity(ctx context.Context, poolID id.PoolID, identity id.Identity) error {
	return s.allowlist.Remove(ctx, poolID, identity)
}

// ListAllowed returns the allow-list entries for one pool.
func (s *Service) ListAllowed(ctx context.Context, poolID id.PoolID) ([]*models.AllowlistEntry, error) {
	return s.allowlist.List(ctx, poolID)
}

// SetPeer configures the expected sender identity for a source replica.
func (s *Service) SetPeer(ctx context.Context, replica id.ReplicaID, identity id.Identity) error {
	if err := s.peers.Set(ctx, replica, identity); err != nil {
		return err
	}
	s.logAudit(ctx, audit.Event{
		Category: audit.CategorySecurity,
		Action:   "peer_trust_configured",
		Replica:  replica,
		Identity: identity,
	}, "replica", replica, "identity", identity)
	return nil
}

// RemovePeer drops a trust entry, returning that source to the permissive
// default.
func (s *Service) RemovePeer(ctx context.Context, replica id.ReplicaID) error {
	return s.peers.Remove(ctx, replica)
}

// ListPeers returns the trusted-peer table.
func (s *Service) ListPeers(ctx context.Context) (map[id.ReplicaID]id.Identity, error) {
	return s.peers.List(ctx)
}

// DepositFunding adds to the outbound-fee balance.
func (s *Service) DepositFunding(ctx context.Context, amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "deposit amount must be positive")
	}
	return s.funding.Deposit(ctx, amount)
}

// FundingBalance reports the outbound-fee balance.
func (s *Service) FundingBalance(ctx context.Context) (uint64, error) {
	return s.funding.Balance(ctx)
}

// ResetMintRecord clears one local mint record. Test/ops escape hatch, not
// steady-state behavior.
func (s *Service) ResetMintRecord(ctx context.Context, poolID id.PoolID, identity id.Identity) error {
	if err := s.records.Reset(ctx, poolID, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset mint record")
	}
	s.logAudit(ctx, audit.Event{
		Category: audit.CategorySecurity,
		Action:   audit.ActionAdminReset,
		Identity: identity,
		Pool:     poolID,
		Reason:   "mint_record",
	}, "pool", poolID, "identity", identity, "target", "mint_record")
	return nil
}

// ResetGlobalStatus clears one identity's replicated status on this replica.
func (s *Service) ResetGlobalStatus(ctx context.Context, identity id.Identity) error {
	if err := s.status.Reset(ctx, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset global status")
	}
	s.logAudit(ctx, audit.Event{
		Category: audit.CategorySecurity,
		Action:   audit.ActionAdminReset,
		Identity: identity,
		Reason:   "global_status",
	}, "identity", identity, "target", "global_status")
	return nil
}

// TransferAuthority replaces the admin capability holder.
func (s *Service) TransferAuthority(ctx context.Context, newHolder string) error {
	if err := s.authority.Transfer(ctx, newHolder); err != nil {
		return err
	}
	s.logAudit(ctx, audit.Event{
		Category: audit.CategorySecurity,
		Action:   audit.ActionAuthorityTransfer,
	}, "new_holder", newHolder)
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event, attrs ...any) {
	ports.LogAudit(ctx, s.logger, s.auditPublisher, event, attrs...)
}
