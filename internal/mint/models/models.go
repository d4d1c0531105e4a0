package models

import (
	"time"

	"github.com/google/uuid"

	id "mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Pool is a capacity- and price-bounded admission channel with its own
// eligibility rule and per-wallet limit.
// Invariants: Minted never exceeds Capacity and only increases.
type Pool struct {
	ID             id.PoolID `json:"id"`
	Capacity       uint64    `json:"capacity"`
	UnitPrice      uint64    `json:"unit_price"`
	Minted         uint64    `json:"minted"`
	Enabled        bool      `json:"enabled"`
	Restricted     bool      `json:"restricted"`
	PerWalletLimit uint64    `json:"per_wallet_limit"`
}

// NewPool creates a Pool with domain invariant validation.
func NewPool(poolID id.PoolID, capacity, unitPrice, perWalletLimit uint64, restricted bool) (*Pool, error) {
	if poolID <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool id must be positive")
	}
	if capacity == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "capacity must be positive")
	}
	if perWalletLimit == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "per-wallet limit must be positive")
	}
	return &Pool{
		ID:             poolID,
		Capacity:       capacity,
		UnitPrice:      unitPrice,
		PerWalletLimit: perWalletLimit,
		Restricted:     restricted,
	}, nil
}

// Remaining returns the unminted headroom.
func (p *Pool) Remaining() uint64 {
	if p.Minted >= p.Capacity {
		return 0
	}
	return p.Capacity - p.Minted
}

// AllowlistEntry grants one identity access to one restricted pool.
type AllowlistEntry struct {
	ID        string      `json:"id"`
	Pool      id.PoolID   `json:"pool"`
	Identity  id.Identity `json:"identity"`
	CreatedAt time.Time   `json:"created_at"`
	CreatedBy string      `json:"created_by"`
}

// NewAllowlistEntry creates an AllowlistEntry with domain invariant validation.
func NewAllowlistEntry(pool id.PoolID, identity id.Identity, createdBy string) (*AllowlistEntry, error) {
	if pool <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool id must be positive")
	}
	if identity.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity cannot be empty")
	}
	return &AllowlistEntry{
		ID:        uuid.NewString(),
		Pool:      pool,
		Identity:  identity,
		CreatedAt: time.Now(),
		CreatedBy: createdBy,
	}, nil
}

// MintRecord counts admissions of one identity in one pool on this replica.
// Created on the first attempt for the pair, incremented atomically with the
// pool's minted count on success.
type MintRecord struct {
	Pool     id.PoolID   `json:"pool"`
	Identity id.Identity `json:"identity"`
	Count    uint64      `json:"count"`
}

// GlobalMintStatus is this replica's view of the replicated admitted flag for
// one identity. Admitted is monotonic: once true it stays true until an
// administrative reset. PoolSyncs counts inbound status syncs per pool; the
// transport may redeliver, so this counter is not deduplicated (see the
// replicator package doc).
type GlobalMintStatus struct {
	Identity  id.Identity          `json:"identity"`
	Admitted  bool                 `json:"admitted"`
	Origin    id.ReplicaID         `json:"origin"`
	PoolSyncs map[id.PoolID]uint64 `json:"pool_syncs,omitempty"`
}

// MarkAdmitted merges the admitted flag. Idempotent: the flag and origin are
// only written on the false -> true transition.
func (s *GlobalMintStatus) MarkAdmitted(origin id.ReplicaID) {
	if s.Admitted {
		return
	}
	s.Admitted = true
	s.Origin = origin
}

// CountSync increments the per-pool sync counter. Deliberately unconditional.
func (s *GlobalMintStatus) CountSync(pool id.PoolID) {
	if pool <= 0 {
		return
	}
	if s.PoolSyncs == nil {
		s.PoolSyncs = make(map[id.PoolID]uint64)
	}
	s.PoolSyncs[pool]++
}

// AdmissionReceipt is returned to the caller of a successful admission.
type AdmissionReceipt struct {
	Pool      id.PoolID   `json:"pool"`
	Identity  id.Identity `json:"identity"`
	Units     uint64      `json:"units"`
	PricePaid uint64      `json:"price_paid"`
	Refund    uint64      `json:"refund"`
}
