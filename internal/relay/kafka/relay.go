// Package kafka adapts the cross-replica relay contract onto Kafka topics.
// Each replica consumes its own inbound topic and produces to the topics of
// its peers. Kafka itself has no per-message fee; the adapter quotes a
// configured flat fee (per-peer overridable) so the engine's funding check
// stays meaningful across transports.
//
// Origin attestation relies on broker ACLs: only the authenticated peer
// principal may produce with its own sender header, so the header is as
// trustworthy as the cluster's authentication.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"mintgate/internal/mint/ports"
	id "mintgate/pkg/domain"
)

const (
	headerSource = "mintgate-source"
	headerSender = "mintgate-sender"
)

// Config carries the adapter settings.
type Config struct {
	Brokers     []string
	TopicPrefix string
	Self        id.ReplicaID
	// Sender is the identity stamped on outbound records.
	Sender id.Identity
	// FlatFee is quoted per destination unless overridden with SetFee.
	FlatFee uint64
	// Group defaults to the replica id; one consumer group per replica so
	// each replica sees every delivery.
	Group string
}

// Relay is a Kafka-backed implementation of the relay contract.
type Relay struct {
	client *kgo.Client
	cfg    Config
	fees   map[id.ReplicaID]uint64
	logger *slog.Logger
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func New(cfg Config, opts ...Option) (*Relay, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Self.IsZero() {
		return nil, fmt.Errorf("replica id is required")
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "mintgate.relay"
	}
	if cfg.Group == "" {
		cfg.Group = cfg.Self.String()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(topicFor(cfg.TopicPrefix, cfg.Self)),
		kgo.ConsumerGroup(cfg.Group),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	r := &Relay{
		client: client,
		cfg:    cfg,
		fees:   make(map[id.ReplicaID]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// SetFee overrides the quoted fee for one destination.
func (r *Relay) SetFee(destination id.ReplicaID, fee uint64) {
	r.fees[destination] = fee
}

// Quote prices a send to the destination replica.
func (r *Relay) Quote(_ context.Context, destination id.ReplicaID, _ []byte) (uint64, error) {
	if fee, ok := r.fees[destination]; ok {
		return fee, nil
	}
	return r.cfg.FlatFee, nil
}

// Send produces the payload to the destination's topic. Fire-and-forget: the
// produce promise only logs, delivery is never awaited or retried here.
func (r *Relay) Send(ctx context.Context, destination id.ReplicaID, payload []byte, _ uint64, _ id.Identity) error {
	record := &kgo.Record{
		Topic: topicFor(r.cfg.TopicPrefix, destination),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: headerSource, Value: []byte(r.cfg.Self.String())},
			{Key: headerSender, Value: []byte(r.cfg.Sender.String())},
		},
	}
	r.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && r.logger != nil {
			r.logger.WarnContext(ctx, "relay produce failed",
				"destination", destination, "error", err)
		}
	})
	return nil
}

// Consume polls the replica's inbound topic and hands each record to the
// handler until ctx is cancelled. Handler errors are logged and the record is
// left consumed; this engine never redelivers.
func (r *Relay) Consume(ctx context.Context, handler ports.DeliveryHandler) error {
	for {
		fetches := r.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fetchErr := range errs {
				if r.logger != nil {
					r.logger.WarnContext(ctx, "relay fetch error",
						"topic", fetchErr.Topic, "error", fetchErr.Err)
				}
			}
		}
		fetches.EachRecord(func(record *kgo.Record) {
			source, sender := recordOrigin(record)
			_ = handler.HandleDelivery(ctx, source, sender, record.Value)
		})
	}
}

// Close releases the Kafka client.
func (r *Relay) Close() {
	r.client.Close()
}

func topicFor(prefix string, replica id.ReplicaID) string {
	return prefix + "." + replica.String()
}

func recordOrigin(record *kgo.Record) (id.ReplicaID, id.Identity) {
	var source id.ReplicaID
	var sender id.Identity
	for _, header := range record.Headers {
		switch header.Key {
		case headerSource:
			source = id.ReplicaID(header.Value)
		case headerSender:
			sender = id.Identity(header.Value)
		}
	}
	return source, sender
}
