// Package memory provides an in-process relay connecting replicas inside one
// test binary or a single-node dev deployment. It mimics the transport
// contract: unordered, best-effort, optionally duplicating deliveries.
package memory

import (
	"context"
	"sync"

	"mintgate/internal/mint/ports"
	id "mintgate/pkg/domain"
)

// Bus routes payloads between registered replica handlers.
type Bus struct {
	mu           sync.RWMutex
	handlers     map[id.ReplicaID]ports.DeliveryHandler
	feeOverrides map[id.ReplicaID]uint64
	flatFee      uint64
	dropped      map[id.ReplicaID]bool
	redeliveries map[id.ReplicaID]int
}

// NewBus creates a bus quoting flatFee per destination unless overridden.
func NewBus(flatFee uint64) *Bus {
	return &Bus{
		handlers:     make(map[id.ReplicaID]ports.DeliveryHandler),
		feeOverrides: make(map[id.ReplicaID]uint64),
		flatFee:      flatFee,
		dropped:      make(map[id.ReplicaID]bool),
		redeliveries: make(map[id.ReplicaID]int),
	}
}

// Register attaches the inbound handler for a replica.
func (b *Bus) Register(replica id.ReplicaID, handler ports.DeliveryHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[replica] = handler
}

// SetFee overrides the quoted fee for one destination.
func (b *Bus) SetFee(destination id.ReplicaID, fee uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feeOverrides[destination] = fee
}

// SetDropped makes sends to the destination vanish, simulating loss.
func (b *Bus) SetDropped(destination id.ReplicaID, dropped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropped[destination] = dropped
}

// SetRedeliveries makes each send to the destination arrive extra additional
// times, simulating at-least-once delivery.
func (b *Bus) SetRedeliveries(destination id.ReplicaID, extra int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.redeliveries[destination] = extra
}

// Endpoint binds a source replica and its attested sender identity to the
// bus, yielding the narrow Relay interface the engine consumes.
func (b *Bus) Endpoint(source id.ReplicaID, sender id.Identity) *Endpoint {
	return &Endpoint{bus: b, source: source, sender: sender}
}

// Endpoint is one replica's view of the bus.
type Endpoint struct {
	bus    *Bus
	source id.ReplicaID
	sender id.Identity
}

func (e *Endpoint) Quote(_ context.Context, destination id.ReplicaID, _ []byte) (uint64, error) {
	e.bus.mu.RLock()
	defer e.bus.mu.RUnlock()

	if fee, ok := e.bus.feeOverrides[destination]; ok {
		return fee, nil
	}
	return e.bus.flatFee, nil
}

func (e *Endpoint) Send(ctx context.Context, destination id.ReplicaID, payload []byte, _ uint64, _ id.Identity) error {
	e.bus.mu.RLock()
	handler := e.bus.handlers[destination]
	dropped := e.bus.dropped[destination]
	deliveries := 1 + e.bus.redeliveries[destination]
	e.bus.mu.RUnlock()

	if handler == nil || dropped {
		// Loss is part of the contract; the sender never learns.
		return nil
	}
	for range deliveries {
		// Delivery errors stay on the receiving side.
		_ = handler.HandleDelivery(ctx, e.source, e.sender, payload)
	}
	return nil
}
