package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes messages to the shared channel. The underlying client is
// long-lived with internal reconnect; callers see only the fire-and-forget
// Publish contract.
type Producer struct {
	brokers []string
	logger  *slog.Logger
	tracer  trace.Tracer

	mu       sync.Mutex
	client   *kgo.Client
	declared map[string]bool
}

// NewProducer builds a producer for the given broker seed addresses. No
// connection is opened until the first Publish.
func NewProducer(brokers []string, logger *slog.Logger) *Producer {
	return &Producer{
		brokers:  brokers,
		logger:   logger,
		tracer:   otel.Tracer("fundflow/messaging"),
		declared: make(map[string]bool),
	}
}

// Publish serializes payload and enqueues it on the named channel. Delivery
// is best-effort: every failure path logs and returns, and no error reaches
// the caller.
func (p *Producer) Publish(ctx context.Context, channel string, payload any) {
	ctx, span := p.tracer.Start(ctx, "messaging.Publish")
	defer span.End()

	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "drop message: marshal failed", "channel", channel, "error", err)
		return
	}

	client, err := p.ensureClient(ctx, channel)
	if err != nil {
		p.logger.ErrorContext(ctx, "drop message: broker unreachable", "channel", channel, "error", err)
		return
	}

	record := &kgo.Record{Topic: channel, Value: value}
	client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("message delivery failed", "channel", channel, "error", err)
		}
	})
}

// Close flushes pending records and tears down the broker connection.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		_ = p.client.Flush(context.Background())
		p.client.Close()
		p.client = nil
	}
}

// ensureClient lazily connects and declares the channel topic once per
// producer lifetime.
func (p *Producer) ensureClient(ctx context.Context, channel string) (*kgo.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		client, err := kgo.NewClient(
			kgo.SeedBrokers(p.brokers...),
			kgo.AllowAutoTopicCreation(),
		)
		if err != nil {
			return nil, err
		}
		p.client = client
	}

	if !p.declared[channel] {
		if err := declareTopic(ctx, p.client, channel); err != nil {
			return nil, err
		}
		p.declared[channel] = true
	}

	return p.client, nil
}

// declareTopic ensures the channel exists before the first send, the broker
// equivalent of declaring a queue. An already-existing topic is success.
func declareTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return err
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return res.Err
		}
	}
	return nil
}
