package audit

import (
	"context"
	"time"

	id "mintgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This enables
// different retention policies and routing.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring.
	// Examples: untrusted inbound messages, authority transfers.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for operational visibility.
	// Examples: admissions, peer notifications, skipped sends.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string
	Identity  id.Identity
	Pool      id.PoolID
	Replica   id.ReplicaID
	Amount    uint64
	Reason    string
	// RequestID carries the correlation id from the HTTP request context,
	// empty for events raised by the inbound relay path.
	RequestID string
}

// Action names emitted by the engine.
const (
	ActionAdmissionGranted    = "admission_granted"
	ActionAdmissionRejected   = "admission_rejected"
	ActionStatusSynced        = "global_status_synced"
	ActionMessageApplied      = "relay_message_applied"
	ActionMessageDropped      = "relay_message_dropped"
	ActionNotificationSent    = "peer_notification_sent"
	ActionNotificationSkipped = "peer_notification_skipped"
	ActionAuthorityTransfer   = "authority_transferred"
	ActionAdminReset          = "admin_reset"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Publisher is the write side handed to domain services.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
