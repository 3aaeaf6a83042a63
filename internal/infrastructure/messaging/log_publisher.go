package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/healthguard/healthguard/pkg/events"
)

// LogPublisher implements port.EventPublisher by writing events to the log.
// It is used when no Kafka brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new log-only event publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event with its envelope metadata.
func (p *LogPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, evt := range domainEvents {
		envelope, err := events.NewEnvelope(evt)
		if err != nil {
			return fmt.Errorf("failed to wrap event %s: %w", evt.EventType(), err)
		}

		p.logger.InfoContext(ctx, "domain event",
			slog.String("event_type", envelope.EventType),
			slog.String("event_id", envelope.EventID),
			slog.String("aggregate_id", envelope.AggregateID),
		)
		p.logger.DebugContext(ctx, "event payload",
			slog.String("event_type", envelope.EventType),
			slog.String("payload", string(envelope.Payload)),
		)
	}
	return nil
}
