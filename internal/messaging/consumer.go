package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Handler processes one delivered message. Returning an error leaves the
// message uncommitted so the broker redelivers it.
type Handler func(ctx context.Context, msg Message) error

// session abstracts one established broker subscription so the retry policy
// can be tested without a broker.
type session interface {
	// Poll blocks for the next batch of records.
	Poll(ctx context.Context) ([]Message, error)
	// Commit acknowledges a processed record.
	Commit(ctx context.Context, msg Message) error
	Close()
}

// connectFunc opens a subscription. Swapped out in tests.
type connectFunc func(ctx context.Context) (session, error)

// Consumer subscribes to one channel with bounded connect retries. A service
// that cannot establish its subscription within the retry budget is fatally
// misconfigured, so Run returns an error and the owning process should exit.
type Consumer struct {
	channel    string
	group      string
	logger     *slog.Logger
	tracer     trace.Tracer
	maxRetries int
	retryDelay time.Duration
	connect    connectFunc
}

// NewConsumer builds a consumer for the named channel. maxRetries bounds the
// connect attempts made after the first failure; each retry waits a fixed
// delay.
func NewConsumer(brokers []string, channel, group string, maxRetries int, logger *slog.Logger) *Consumer {
	c := &Consumer{
		channel:    channel,
		group:      group,
		logger:     logger,
		tracer:     otel.Tracer("fundflow/messaging"),
		maxRetries: maxRetries,
		retryDelay: 5 * time.Second,
	}
	c.connect = func(ctx context.Context) (session, error) {
		return dialKafka(ctx, brokers, channel, group)
	}
	return c
}

// Run connects and consumes until ctx is cancelled or an unrecoverable error
// occurs. Connect failures retry with fixed backoff in an explicit loop; once
// retries are exhausted the error is returned to the caller.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	sess, err := c.connectWithRetry(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	c.logger.InfoContext(ctx, "subscribed to channel", "channel", c.channel, "group", c.group)

	for {
		msgs, err := sess.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("poll %s: %w", c.channel, err)
		}

		for _, msg := range msgs {
			if err := c.handleOne(ctx, handler, msg); err != nil {
				// Uncommitted: the broker will redeliver on the next session.
				return fmt.Errorf("handle message on %s: %w", c.channel, err)
			}
			if err := sess.Commit(ctx, msg); err != nil {
				return fmt.Errorf("commit offset on %s: %w", c.channel, err)
			}
		}
	}
}

func (c *Consumer) handleOne(ctx context.Context, handler Handler, msg Message) error {
	ctx, span := c.tracer.Start(ctx, "messaging.Handle")
	defer span.End()
	return handler(ctx, msg)
}

// connectWithRetry attempts the subscription up to 1+maxRetries times with a
// fixed delay between attempts.
func (c *Consumer) connectWithRetry(ctx context.Context) (session, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		sess, err := c.connect(ctx)
		if err == nil {
			return sess, nil
		}
		lastErr = err

		if attempt >= c.maxRetries {
			break
		}
		c.logger.WarnContext(ctx, "broker connect failed, retrying",
			"channel", c.channel,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return nil, fmt.Errorf("subscribe %s: retries exhausted: %w", c.channel, lastErr)
}

// kafkaSession adapts a kgo client to the session interface with auto-commit
// disabled so acknowledgment stays explicit.
type kafkaSession struct {
	client *kgo.Client
}

func dialKafka(ctx context.Context, brokers []string, channel, group string) (session, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(channel),
		kgo.ConsumerGroup(group),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return &kafkaSession{client: client}, nil
}

func (s *kafkaSession) Poll(ctx context.Context) ([]Message, error) {
	fetches := s.client.PollFetches(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs := fetches.Errors(); len(errs) > 0 {
		return nil, errs[0].Err
	}

	var msgs []Message
	fetches.EachRecord(func(r *kgo.Record) {
		msgs = append(msgs, Message{
			Topic:     r.Topic,
			Key:       r.Key,
			Value:     r.Value,
			Partition: r.Partition,
			Offset:    r.Offset,
		})
	})
	return msgs, nil
}

func (s *kafkaSession) Commit(ctx context.Context, msg Message) error {
	return s.client.CommitRecords(ctx, &kgo.Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	})
}

func (s *kafkaSession) Close() {
	s.client.Close()
}
