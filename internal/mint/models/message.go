package models

import (
	"encoding/json"

	"github.com/google/uuid"

	id "mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// MessageKind tags a cross-replica relay message. The closed set of kinds is
// the only externally durable contract this engine defines.
type MessageKind string

const (
	// KindCreditForDebit grants units locally, mirroring a burn that
	// happened on the source replica.
	KindCreditForDebit MessageKind = "credit_for_debit"
	// KindDebitForCredit removes units locally, mirroring a credit on the
	// source replica.
	KindDebitForCredit MessageKind = "debit_for_credit"
	// KindSyncGlobalStatus marks the identity as admitted globally.
	KindSyncGlobalStatus MessageKind = "sync_global_status"
)

// IsValid checks if the kind is one of the supported enum values.
func (k MessageKind) IsValid() bool {
	switch k {
	case KindCreditForDebit, KindDebitForCredit, KindSyncGlobalStatus:
		return true
	}
	return false
}

func (k MessageKind) String() string { return string(k) }

// RelayMessage is the tagged wire record exchanged between replicas. ID exists
// for log correlation only; the engine does not deduplicate on it.
type RelayMessage struct {
	ID       string      `json:"id"`
	Kind     MessageKind `json:"kind"`
	Identity id.Identity `json:"identity"`
	Amount   uint64      `json:"amount,omitempty"`
	Pool     id.PoolID   `json:"pool,omitempty"`
}

// NewCreditForDebit builds a credit mirror message.
func NewCreditForDebit(identity id.Identity, amount uint64) RelayMessage {
	return RelayMessage{ID: uuid.NewString(), Kind: KindCreditForDebit, Identity: identity, Amount: amount}
}

// NewDebitForCredit builds a debit mirror message.
func NewDebitForCredit(identity id.Identity, amount uint64) RelayMessage {
	return RelayMessage{ID: uuid.NewString(), Kind: KindDebitForCredit, Identity: identity, Amount: amount}
}

// NewSyncGlobalStatus builds a global status sync message. Pool is optional;
// zero means no per-pool counter update at the destination.
func NewSyncGlobalStatus(identity id.Identity, pool id.PoolID) RelayMessage {
	return RelayMessage{ID: uuid.NewString(), Kind: KindSyncGlobalStatus, Identity: identity, Pool: pool}
}

// Validate enforces the wire invariants shared by encode and decode.
func (m RelayMessage) Validate() error {
	if !m.Kind.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown message kind %q", string(m.Kind))
	}
	if m.Identity.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "message identity cannot be empty")
	}
	switch m.Kind {
	case KindCreditForDebit, KindDebitForCredit:
		if m.Amount == 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "transfer mirror requires a positive amount")
		}
	}
	return nil
}

// Encode serializes the message for the relay.
func (m RelayMessage) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// DecodeRelayMessage parses and validates an inbound payload.
func DecodeRelayMessage(payload []byte) (RelayMessage, error) {
	var m RelayMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return RelayMessage{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed relay payload")
	}
	if err := m.Validate(); err != nil {
		return RelayMessage{}, err
	}
	return m, nil
}
