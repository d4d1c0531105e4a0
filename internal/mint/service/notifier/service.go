// Package notifier fans a local admission out to trusted peer replicas.
// Dispatch is fire-and-forget: no queue, no retry, no acknowledgment
// tracking. A peer that cannot be funded or reached simply stays stale until
// a later message converges it.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/platform/metrics"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"
)

// Type aliases for shared interfaces.
type (
	PeerStore      = ports.PeerStore
	FundingStore   = ports.FundingStore
	Relay          = ports.Relay
	AuditPublisher = ports.AuditPublisher
)

// Skip reasons reported on the outbound-skipped metric.
const (
	skipReasonQuoteFailed  = "quote_failed"
	skipReasonUnderfunded  = "insufficient_funding"
	skipReasonSendFailed   = "send_failed"
	skipReasonEncodeFailed = "encode_failed"
)

type Service struct {
	peers   PeerStore
	funding FundingStore
	relay   Relay
	self    id.ReplicaID
	// feeRefundTo receives unused fee change from the transport.
	feeRefundTo id.Identity

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

func WithFeeRefundIdentity(identity id.Identity) Option {
	return func(s *Service) {
		s.feeRefundTo = identity
	}
}

func New(self id.ReplicaID, peers PeerStore, funding FundingStore, relay Relay, opts ...Option) (*Service, error) {
	if self.IsZero() {
		return nil, fmt.Errorf("replica id is required")
	}
	if peers == nil {
		return nil, fmt.Errorf("peer store is required")
	}
	if funding == nil {
		return nil, fmt.Errorf("funding store is required")
	}
	if relay == nil {
		return nil, fmt.Errorf("relay is required")
	}

	svc := &Service{
		self:    self,
		peers:   peers,
		funding: funding,
		relay:   relay,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// NotifyPeers broadcasts a global status sync for the identity to every
// trusted peer. Failures are absorbed: the enclosing admission has already
// committed and must not observe them.
func (s *Service) NotifyPeers(ctx context.Context, identity id.Identity, pool id.PoolID) {
	s.Broadcast(ctx, models.NewSyncGlobalStatus(identity, pool))
}

// Broadcast dispatches one message to every configured, funded peer. Exposed
// so the asset-transfer collaborator can push its mirror messages through the
// same funding and fee path.
func (s *Service) Broadcast(ctx context.Context, msg models.RelayMessage) {
	payload, err := msg.Encode()
	if err != nil {
		s.skip(ctx, "", skipReasonEncodeFailed, err)
		return
	}

	table, err := s.peers.List(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "peer table unavailable, skipping notification", "error", err)
		}
		return
	}

	// Deterministic dispatch order keeps logs and tests stable.
	replicas := make([]id.ReplicaID, 0, len(table))
	for replica := range table {
		replicas = append(replicas, replica)
	}
	sort.Slice(replicas, func(i, j int) bool { return replicas[i] < replicas[j] })

	for _, replica := range replicas {
		if replica == s.self || table[replica].IsZero() {
			continue
		}
		s.dispatch(ctx, replica, msg, payload)
	}
}

// dispatch quotes, funds, and sends to one peer. Every failure path skips the
// peer silently.
func (s *Service) dispatch(ctx context.Context, destination id.ReplicaID, msg models.RelayMessage, payload []byte) {
	fee, err := s.relay.Quote(ctx, destination, payload)
	if err != nil {
		s.skip(ctx, destination, skipReasonQuoteFailed, err)
		return
	}

	balance, err := s.funding.Balance(ctx)
	if err != nil || balance < fee {
		s.skip(ctx, destination, skipReasonUnderfunded, err)
		return
	}
	if err := s.funding.Withdraw(ctx, fee); err != nil {
		s.skip(ctx, destination, skipReasonUnderfunded, err)
		return
	}

	if err := s.relay.Send(ctx, destination, payload, fee, s.feeRefundTo); err != nil {
		// Fee already spent; loss is accepted rather than tracked.
		s.skip(ctx, destination, skipReasonSendFailed, err)
		return
	}

	if s.metrics != nil {
		s.metrics.OutboundSent.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category: audit.CategoryOperations,
		Action:   audit.ActionNotificationSent,
		Identity: msg.Identity,
		Pool:     msg.Pool,
		Replica:  destination,
	},
		"destination", destination,
		"kind", msg.Kind,
		"message_id", msg.ID,
		"fee", fee,
	)
}

func (s *Service) skip(ctx context.Context, destination id.ReplicaID, reason string, err error) {
	if s.metrics != nil {
		s.metrics.OutboundSkipped.WithLabelValues(reason).Inc()
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "peer notification skipped",
			"destination", destination, "reason", reason, "error", err)
	}
}
