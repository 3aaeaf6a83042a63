package port

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/pkg/events"
)

// ErrAssessmentNotFound is returned by repositories when no assessment matches.
var ErrAssessmentNotFound = errors.New("assessment not found")

// AssessmentRepository defines the persistence port for risk assessments.
type AssessmentRepository interface {
	// Save persists a new or updated risk assessment.
	Save(ctx context.Context, assessment *model.RiskAssessment) error

	// FindByID retrieves an assessment by its unique identifier.
	// It returns ErrAssessmentNotFound when nothing matches.
	FindByID(ctx context.Context, id uuid.UUID) (*model.RiskAssessment, error)

	// List returns assessments newest first together with the total count.
	List(ctx context.Context, limit, offset int) ([]*model.RiskAssessment, int, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// Metrics records service-level measurements for completed assessments.
type Metrics interface {
	RecordAssessment(ctx context.Context, kind, tier string, duration time.Duration)
	RecordFailure(ctx context.Context, kind, reason string)
}
