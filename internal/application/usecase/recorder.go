package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/service"
)

var tracer = otel.Tracer("github.com/healthguard/healthguard/internal/application/usecase")

// Failure reasons reported to metrics.
const (
	reasonValidation       = "validation"
	reasonModelUnavailable = "model_unavailable"
	reasonNotFound         = "not_found"
	reasonInternal         = "internal"
)

// recorder persists completed assessments and publishes their events.
type recorder struct {
	repo      port.AssessmentRepository
	publisher port.EventPublisher
	metrics   port.Metrics
}

func (r recorder) store(ctx context.Context, a *model.RiskAssessment) error {
	if err := r.repo.Save(ctx, a); err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	evts := a.DomainEvents()
	if len(evts) > 0 {
		if err := r.publisher.Publish(ctx, evts...); err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}
	}
	return nil
}

func (r recorder) succeed(ctx context.Context, span trace.Span, a *model.RiskAssessment, start time.Time) {
	span.SetAttributes(
		attribute.String("assessment.id", a.ID().String()),
		attribute.String("assessment.risk_tier", a.RiskTier().String()),
		attribute.Float64("assessment.baseline_risk", a.BaselineRisk()),
	)
	r.metrics.RecordAssessment(ctx, a.Kind().String(), a.RiskTier().String(), time.Since(start))
}

func (r recorder) fail(ctx context.Context, span trace.Span, kind string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.metrics.RecordFailure(ctx, kind, failureReason(err))
	return err
}

func failureReason(err error) string {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return reasonValidation
	case errors.Is(err, service.ErrModelNotLoaded):
		return reasonModelUnavailable
	case errors.Is(err, port.ErrAssessmentNotFound):
		return reasonNotFound
	default:
		return reasonInternal
	}
}
