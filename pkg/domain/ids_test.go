package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mintgate/pkg/domain-errors"
)

// TestParseIdentity_Invariants validates the parsing invariant: identities
// are opaque but must be non-empty at trust boundaries.
func TestParseIdentity_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentity("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts any non-empty value", func(t *testing.T) {
		identity, err := ParseIdentity("wallet:0xabc")
		require.NoError(t, err)
		assert.Equal(t, Identity("wallet:0xabc"), identity)
		assert.False(t, identity.IsZero())
	})
}

func TestParseReplicaID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseReplicaID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts non-empty value", func(t *testing.T) {
		replica, err := ParseReplicaID("replica-a")
		require.NoError(t, err)
		assert.Equal(t, "replica-a", replica.String())
	})
}

// TestParsePoolID_Invariants validates the syntactic invariant only; range
// membership belongs to the admission controller's config.
func TestParsePoolID_Invariants(t *testing.T) {
	t.Run("rejects non-integer input", func(t *testing.T) {
		_, err := ParsePoolID("gold")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		_, err := ParsePoolID("0")
		require.Error(t, err)
		_, err = ParsePoolID("-3")
		require.Error(t, err)
	})

	t.Run("accepts positive integers beyond the configured range", func(t *testing.T) {
		pool, err := ParsePoolID("42")
		require.NoError(t, err)
		assert.Equal(t, PoolID(42), pool)
		assert.Equal(t, "42", pool.String())
	})
}

// TestTypeDistinction verifies the compiler enforces type safety between the
// string-backed identifiers.
func TestTypeDistinction(t *testing.T) {
	identity := Identity("replica-a")
	replica := ReplicaID("replica-a")

	// These would fail to compile if types were interchangeable:
	// var _ Identity = replica   // compile error
	// var _ ReplicaID = identity // compile error

	assert.Equal(t, identity.String(), replica.String())
}
