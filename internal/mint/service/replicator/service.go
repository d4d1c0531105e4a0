// Package replicator applies inbound cross-replica messages to this replica's
// copy of the replicated state.
//
// Each delivery moves received -> validated -> applied, or is dropped with no
// state change. Dropping is silent toward the sender: the relay offers no
// reply channel, so rejections surface only through logs and metrics.
//
// The admitted flag is merged idempotently. The per-pool sync counter is not:
// the relay may redeliver, and each delivery increments the counter again.
// That inflation is a known property of the wire contract and is deliberately
// left visible rather than papered over with deduplication this engine cannot
// guarantee.
package replicator

import (
	"context"
	"fmt"
	"log/slog"

	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/platform/metrics"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"

	dErrors "mintgate/pkg/domain-errors"
)

// Type aliases for shared interfaces.
type (
	PeerStore         = ports.PeerStore
	GlobalStatusStore = ports.GlobalStatusStore
	LedgerStore       = ports.LedgerStore
	AuditPublisher    = ports.AuditPublisher
)

// Drop reasons reported on the inbound-dropped metric.
const (
	dropReasonMalformed = "malformed"
	dropReasonUntrusted = "untrusted_origin"
)

type Service struct {
	peers  PeerStore
	status GlobalStatusStore
	ledger LedgerStore

	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
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

func New(peers PeerStore, status GlobalStatusStore, ledger LedgerStore, opts ...Option) (*Service, error) {
	if peers == nil {
		return nil, fmt.Errorf("peer store is required")
	}
	if status == nil {
		return nil, fmt.Errorf("global status store is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger store is required")
	}

	svc := &Service{
		peers:  peers,
		status: status,
		ledger: ledger,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// HandleDelivery processes one inbound relay delivery. The returned error is
// informational for the invoking adapter; the message is never redelivered by
// this engine and no state changes on any error path before application.
func (s *Service) HandleDelivery(ctx context.Context, claimedSource id.ReplicaID, attestedSender id.Identity, payload []byte) error {
	msg, err := models.DecodeRelayMessage(payload)
	if err != nil {
		s.drop(ctx, claimedSource, dropReasonMalformed, "", err)
		return err
	}

	if err := s.validateOrigin(ctx, claimedSource, attestedSender); err != nil {
		s.drop(ctx, claimedSource, dropReasonUntrusted, msg.ID, err)
		return err
	}

	if err := s.apply(ctx, claimedSource, msg); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "relay message application failed",
				"message_id", msg.ID, "kind", msg.Kind, "source", claimedSource, "error", err)
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.InboundApplied.WithLabelValues(msg.Kind.String()).Inc()
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "relay message applied",
			"message_id", msg.ID, "kind", msg.Kind, "source", claimedSource)
	}
	return nil
}

// validateOrigin checks the claimed source against the trusted-peer table.
// An unconfigured source is accepted: the permissive default keeps new peers
// deployable without lock-step table updates across all replicas.
func (s *Service) validateOrigin(ctx context.Context, claimedSource id.ReplicaID, attestedSender id.Identity) error {
	expected, err := s.peers.Expected(ctx, claimedSource)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "peer table lookup failed")
	}
	if expected.IsZero() {
		if s.logger != nil {
			s.logger.DebugContext(ctx, "accepting message from unconfigured source",
				"source", claimedSource, "sender", attestedSender)
		}
		return nil
	}
	if expected != attestedSender {
		return dErrors.Newf(dErrors.CodeUntrustedOrigin,
			"sender does not match configured peer for source %s", claimedSource)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, source id.ReplicaID, msg models.RelayMessage) error {
	switch msg.Kind {
	case models.KindCreditForDebit:
		// At-most-once per logical transfer is the transport's guarantee;
		// applying twice would double-grant and is not re-verified here.
		return s.ledger.Credit(ctx, msg.Identity, msg.Amount)

	case models.KindDebitForCredit:
		return s.ledger.Debit(ctx, msg.Identity, msg.Amount)

	case models.KindSyncGlobalStatus:
		if _, err := s.status.MarkAdmitted(ctx, msg.Identity, source); err != nil {
			return err
		}
		if msg.Pool > 0 {
			if _, err := s.status.CountSync(ctx, msg.Identity, msg.Pool); err != nil {
				return err
			}
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
			Category: audit.CategoryOperations,
			Action:   audit.ActionStatusSynced,
			Identity: msg.Identity,
			Pool:     msg.Pool,
			Replica:  source,
		},
			"identity", msg.Identity,
			"pool", msg.Pool,
			"source", source,
		)
		return nil

	default:
		// Unreachable after decode validation; kept for the closed-set
		// contract.
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown message kind %q", msg.Kind)
	}
}

// drop records a rejected delivery. There is no caller to report to, so
// observability is the only surface.
func (s *Service) drop(ctx context.Context, source id.ReplicaID, reason, messageID string, err error) {
	if s.metrics != nil {
		s.metrics.InboundDropped.WithLabelValues(reason).Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category: audit.CategorySecurity,
		Action:   audit.ActionMessageDropped,
		Replica:  source,
		Reason:   reason,
	},
		"source", source,
		"reason", reason,
		"message_id", messageID,
		"error", err,
	)
}
