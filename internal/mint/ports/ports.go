// Package ports defines shared interfaces for the mint module.
// Interfaces are placed here when consumed by multiple services to avoid
// duplication.
package ports

import (
	"context"
	"log/slog"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"
	"mintgate/pkg/requestcontext"
)

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// PoolStore manages pool definitions and minted counters.
type PoolStore interface {
	// Get retrieves one pool. Returns sentinel.ErrNotFound (wrapped) when
	// the pool has not been defined.
	Get(ctx context.Context, pool id.PoolID) (*models.Pool, error)

	// Put creates or replaces a pool definition.
	Put(ctx context.Context, pool *models.Pool) error

	// IncrementMinted adds to the minted counter. The store rejects an
	// increment past capacity so the invariant holds even if a caller
	// skipped its own headroom check.
	IncrementMinted(ctx context.Context, pool id.PoolID, amount uint64) (*models.Pool, error)

	// SetEnabled flips a pool's individual enablement.
	SetEnabled(ctx context.Context, pool id.PoolID, enabled bool) error

	// List returns all defined pools.
	List(ctx context.Context) ([]*models.Pool, error)
}

// AllowlistStore manages (pool, identity) membership for restricted pools.
type AllowlistStore interface {
	// IsAllowed checks membership.
	IsAllowed(ctx context.Context, pool id.PoolID, identity id.Identity) (bool, error)

	// Add creates a membership entry.
	Add(ctx context.Context, entry *models.AllowlistEntry) error

	// Remove deletes a membership entry.
	Remove(ctx context.Context, pool id.PoolID, identity id.Identity) error

	// List returns entries for one pool.
	List(ctx context.Context, pool id.PoolID) ([]*models.AllowlistEntry, error)
}

// MintRecordStore manages per (pool, identity) admission counters.
type MintRecordStore interface {
	// Get retrieves the record, or nil when the pair has never minted.
	Get(ctx context.Context, pool id.PoolID, identity id.Identity) (*models.MintRecord, error)

	// Increment adds to the counter, creating the record on first use.
	Increment(ctx context.Context, pool id.PoolID, identity id.Identity, amount uint64) (*models.MintRecord, error)

	// Reset clears the record (ops escape hatch).
	Reset(ctx context.Context, pool id.PoolID, identity id.Identity) error
}

// GlobalStatusStore manages this replica's copy of the replicated admitted
// flag.
type GlobalStatusStore interface {
	// Get retrieves the status, or nil when the identity is unknown.
	Get(ctx context.Context, identity id.Identity) (*models.GlobalMintStatus, error)

	// MarkAdmitted performs the idempotent monotonic merge of the flag.
	MarkAdmitted(ctx context.Context, identity id.Identity, origin id.ReplicaID) (*models.GlobalMintStatus, error)

	// CountSync increments the per-pool inbound sync counter. Not
	// idempotent under redelivery; callers own that trade-off.
	CountSync(ctx context.Context, identity id.Identity, pool id.PoolID) (*models.GlobalMintStatus, error)

	// Reset clears the status (ops escape hatch).
	Reset(ctx context.Context, identity id.Identity) error
}

// PeerStore manages the trusted-peer table: the identity each source replica
// is expected to send from.
type PeerStore interface {
	// Expected returns the configured identity for a source replica, or the
	// zero Identity when none is configured (permissive default applies).
	Expected(ctx context.Context, replica id.ReplicaID) (id.Identity, error)

	// Set configures or replaces a trust entry.
	Set(ctx context.Context, replica id.ReplicaID, identity id.Identity) error

	// Remove deletes a trust entry.
	Remove(ctx context.Context, replica id.ReplicaID) error

	// List returns the full table.
	List(ctx context.Context) (map[id.ReplicaID]id.Identity, error)
}

// FundingStore tracks the balance available for outbound relay fees.
type FundingStore interface {
	// Balance returns the current funding balance.
	Balance(ctx context.Context) (uint64, error)

	// Deposit adds funds.
	Deposit(ctx context.Context, amount uint64) error

	// Withdraw removes funds; returns sentinel.ErrConflict (wrapped) when
	// the balance does not cover the amount.
	Withdraw(ctx context.Context, amount uint64) error
}

// LedgerStore mirrors cross-replica transfer bookkeeping. The balance
// accounting itself is an external collaborator; the replicator only needs
// the two mirror operations.
type LedgerStore interface {
	// Credit grants units to an identity.
	Credit(ctx context.Context, identity id.Identity, amount uint64) error

	// Debit removes units from an identity. Balances may go negative here;
	// reconciliation belongs to the external accounting system.
	Debit(ctx context.Context, identity id.Identity, amount uint64) error

	// Balance reports the locally mirrored balance.
	Balance(ctx context.Context, identity id.Identity) (int64, error)
}

// AuthorityStore holds the identity of the administrative capability holder.
type AuthorityStore interface {
	// Current returns the identity holding the admin capability.
	Current(ctx context.Context) (string, error)

	// Transfer replaces the holder.
	Transfer(ctx context.Context, newHolder string) error
}

// Relay is the external message transport, consumed through a narrow
// interface only. Delivery is unordered, at-least-once, best-effort.
type Relay interface {
	// Quote prices a send to the destination replica.
	Quote(ctx context.Context, destination id.ReplicaID, payload []byte) (fee uint64, err error)

	// Send dispatches fire-and-forget. Unused fee is returned to refundTo
	// by the transport; the engine never tracks acknowledgment.
	Send(ctx context.Context, destination id.ReplicaID, payload []byte, fee uint64, refundTo id.Identity) error
}

// DeliveryHandler receives inbound relay deliveries. Implemented by the
// replicator; invoked by relay adapters. The returned error is for the
// adapter's logging only - there is no caller to report to and the message is
// never redelivered on error by this engine.
type DeliveryHandler interface {
	HandleDelivery(ctx context.Context, claimedSource id.ReplicaID, attestedSender id.Identity, payload []byte) error
}

// PeerNotifier fans a local admission out to trusted peers.
type PeerNotifier interface {
	NotifyPeers(ctx context.Context, identity id.Identity, pool id.PoolID)
}

// Refunder returns overpayment to the caller. Payment mechanics are an
// external collaborator; the engine only computes amounts.
type Refunder interface {
	Refund(ctx context.Context, identity id.Identity, amount uint64) error
}

// LogAudit is a shared helper for logging audit events across mint services.
// It logs to both the structured logger and the audit publisher if available.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event, attrs ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		event.RequestID = requestID
		attrs = append(attrs, "request_id", requestID)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	args := append(attrs, "event", event.Action, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, event.Action, args...)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
