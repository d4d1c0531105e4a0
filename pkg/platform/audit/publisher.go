package audit

import (
	"context"
	"time"
)

// ChannelPublisher buffers events on a channel for the background worker.
// Emit never blocks the caller: when the buffer is full the event is dropped,
// which keeps audit strictly best-effort relative to domain operations.
type ChannelPublisher struct {
	inbox chan Event
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelPublisher{inbox: make(chan Event, buffer)}
}

// Emit enqueues the event, stamping the time if unset.
func (p *ChannelPublisher) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		// Buffer full; audit loss is preferred over blocking admissions.
	}
	return nil
}

// Inbox exposes the read side for the worker.
func (p *ChannelPublisher) Inbox() <-chan Event { return p.inbox }
