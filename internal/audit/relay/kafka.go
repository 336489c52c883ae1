// Package relay publishes finalized audit entries to Kafka so compliance
// consumers can build their own retention pipelines. The relay is strictly
// best-effort: the request path only ever pays for a buffered channel send,
// and entries are dropped (and counted) when the buffer is full or the
// broker unreachable. The store remains the system of record.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"taskhub/internal/audit"
)

var (
	relayPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_audit_relay_published_total",
		Help: "Audit entries successfully produced to Kafka",
	})
	relayDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_audit_relay_dropped_total",
		Help: "Audit entries dropped because the relay buffer was full or produce failed",
	})
)

const inboxSize = 1024

// Kafka relays audit entries to a Kafka topic using franz-go.
type Kafka struct {
	client *kgo.Client
	topic  string
	inbox  chan audit.Entry
	logger *slog.Logger
}

// NewKafka connects to the brokers and ensures the topic exists. The caller
// owns the relay lifecycle: start Run in a goroutine and Close on shutdown.
func NewKafka(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &Kafka{
		client: client,
		topic:  topic,
		inbox:  make(chan audit.Entry, inboxSize),
		logger: logger,
	}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Publish enqueues an entry without blocking. Entries are dropped when the
// buffer is full; the drop counter makes that visible.
func (k *Kafka) Publish(entry audit.Entry) {
	select {
	case k.inbox <- entry:
	default:
		relayDropped.Inc()
	}
}

// Run drains the inbox and produces entries until ctx is canceled. Produce
// failures are logged and counted, never retried: the store already holds
// the entry.
func (k *Kafka) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-k.inbox:
			k.produce(ctx, entry)
		}
	}
}

func (k *Kafka) produce(ctx context.Context, entry audit.Entry) {
	value, err := json.Marshal(entry)
	if err != nil {
		relayDropped.Inc()
		k.logger.ErrorContext(ctx, "failed to encode audit entry for relay", "error", err)
		return
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.OrganizationID),
		Value: value,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			relayDropped.Inc()
			k.logger.ErrorContext(ctx, "failed to produce audit entry", "error", err)
			return
		}
		relayPublished.Inc()
	})
}

// Close flushes buffered records and releases the client.
func (k *Kafka) Close() {
	_ = k.client.Flush(context.Background())
	k.client.Close()
}
