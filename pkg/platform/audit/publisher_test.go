package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelPublisher_Emit(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues and stamps the time", func(t *testing.T) {
		p := NewChannelPublisher(4)

		require.NoError(t, p.Emit(ctx, Event{Category: CategoryOperations, Action: ActionAdmissionGranted}))

		event := <-p.Inbox()
		assert.Equal(t, ActionAdmissionGranted, event.Action)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		p := NewChannelPublisher(1)

		require.NoError(t, p.Emit(ctx, Event{Action: "first"}))
		// Must return immediately even with nobody draining.
		require.NoError(t, p.Emit(ctx, Event{Action: "second"}))

		event := <-p.Inbox()
		assert.Equal(t, "first", event.Action)
		select {
		case extra := <-p.Inbox():
			t.Fatalf("expected second event to be dropped, got %q", extra.Action)
		default:
		}
	})

	t.Run("zero buffer size falls back to a sane default", func(t *testing.T) {
		p := NewChannelPublisher(0)
		require.NoError(t, p.Emit(ctx, Event{Action: "anything"}))
		event := <-p.Inbox()
		assert.Equal(t, "anything", event.Action)
	})
}
