// Package domain holds the typed identifiers shared across the engine.
//
// Usage: construct via the Parse functions at trust boundaries to enforce
// validation; direct casting bypasses it.
package domain

import (
	"strconv"

	dErrors "mintgate/pkg/domain-errors"
)

// Identity is the externally verifiable principal used as the uniqueness key
// for admission eligibility. The engine treats it as opaque.
type Identity string

// ParseIdentity constructs an Identity from external input.
//
// Errors: returns CodeInvalidInput when the value is empty.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	return Identity(s), nil
}

func (i Identity) String() string { return string(i) }

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool { return i == "" }

// ReplicaID names one independently executing instance of the engine.
type ReplicaID string

// ParseReplicaID constructs a ReplicaID from external input.
func ParseReplicaID(s string) (ReplicaID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "replica id cannot be empty")
	}
	return ReplicaID(s), nil
}

func (r ReplicaID) String() string { return string(r) }

// IsZero reports whether the replica id is unset.
func (r ReplicaID) IsZero() bool { return r == "" }

// PoolID identifies one admission pool. Pools live in a small fixed range; the
// range bound is owned by the mint config, not by this type, so ParsePoolID
// only enforces the syntactic invariant (positive integer).
type PoolID int

// ParsePoolID constructs a PoolID from external input.
//
// Errors: returns CodeInvalidInput when the value is not a positive integer.
// Range membership is checked by the admission controller against its
// configured pool set.
func ParsePoolID(s string) (PoolID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "pool id must be an integer")
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "pool id must be positive")
	}
	return PoolID(n), nil
}

func (p PoolID) String() string { return strconv.Itoa(int(p)) }
