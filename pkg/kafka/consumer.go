package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// reader is the subset of *kafkago.Reader the consumer relies on.
type reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Default retry delays for a failing handler.
const (
	DefaultRetryBackoff    = 200 * time.Millisecond
	DefaultMaxRetryBackoff = 30 * time.Second
)

// Consumer reads a topic within a consumer group and hands each message to a Handler.
// Messages are committed only after the handler succeeds. A failing message is
// retried with exponential backoff until it succeeds or the context ends, so the
// partition never advances past it.
type Consumer struct {
	reader  reader
	topic   string
	group   string
	handler Handler
	logger  *slog.Logger

	retryBackoff    time.Duration
	maxRetryBackoff time.Duration
}

// NewConsumer creates a Consumer for the given topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka: consumer group is required")
	}

	dialer, err := cfg.dialer()
	if err != nil {
		return nil, err
	}

	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		StartOffset: kafkago.FirstOffset,
		MaxBytes:    10 * 1024 * 1024, // 10 MB
		Dialer:      dialer,
	})

	return newConsumer(r, topic, cfg.ConsumerGroup, handler, logger), nil
}

func newConsumer(r reader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		topic:   topic,
		group:   group,
		handler: handler,
		logger:  logger,

		retryBackoff:    DefaultRetryBackoff,
		maxRetryBackoff: DefaultMaxRetryBackoff,
	}
}

// Start begins consuming messages. Blocks until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.topic, "group", c.group)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping due to context cancellation")
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if !c.handle(ctx, m) {
			c.logger.Info("consumer stopping with message uncommitted",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
			)
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler until it succeeds. It reports false when the context
// ended first.
func (c *Consumer) handle(ctx context.Context, m kafkago.Message) bool {
	msg := fromKafka(m)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(c.backoff(attempt)):
			}
		}

		err := c.handler(ctx, msg)
		if err == nil {
			return true
		}
		c.logger.Error("handler error, retrying",
			"topic", m.Topic,
			"partition", m.Partition,
			"offset", m.Offset,
			"attempt", attempt+1,
			"error", err,
		)
	}
}

// backoff doubles the base delay per attempt, capped, with up to 50% jitter.
func (c *Consumer) backoff(attempt int) time.Duration {
	d := c.retryBackoff
	for i := 1; i < attempt && d < c.maxRetryBackoff; i++ {
		d *= 2
	}
	if d > c.maxRetryBackoff {
		d = c.maxRetryBackoff
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int63n(half))
	}
	return d
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
