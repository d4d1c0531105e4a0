package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mintgate/pkg/domain-errors"
)

func TestRelayMessage_Validate(t *testing.T) {
	t.Run("constructors produce valid messages", func(t *testing.T) {
		assert.NoError(t, NewCreditForDebit("wallet-1", 5).Validate())
		assert.NoError(t, NewDebitForCredit("wallet-1", 5).Validate())
		assert.NoError(t, NewSyncGlobalStatus("wallet-1", 0).Validate())
		assert.NoError(t, NewSyncGlobalStatus("wallet-1", 3).Validate())
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		err := RelayMessage{ID: "m", Kind: "spend_twice", Identity: "wallet-1"}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("empty identity is rejected", func(t *testing.T) {
		err := RelayMessage{ID: "m", Kind: KindSyncGlobalStatus}.Validate()
		require.Error(t, err)
	})

	t.Run("transfer mirror requires an amount", func(t *testing.T) {
		err := RelayMessage{ID: "m", Kind: KindCreditForDebit, Identity: "wallet-1"}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestDecodeRelayMessage(t *testing.T) {
	t.Run("encoded message decodes to the same fields", func(t *testing.T) {
		msg := NewSyncGlobalStatus("wallet-1", 2)
		payload, err := msg.Encode()
		require.NoError(t, err)

		decoded, err := DecodeRelayMessage(payload)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	})

	t.Run("invalid json is rejected", func(t *testing.T) {
		_, err := DecodeRelayMessage([]byte("not json"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("decode enforces the same invariants as encode", func(t *testing.T) {
		_, err := DecodeRelayMessage([]byte(`{"id":"m","kind":"debit_for_credit","identity":"wallet-1","amount":0}`))
		require.Error(t, err)
	})
}
