package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes the instruments created here.
const MeterName = "github.com/healthguard/healthguard"

// Metrics implements port.Metrics with OpenTelemetry instruments.
type Metrics struct {
	assessments metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
	requests    metric.Int64Counter
}

// NewMetrics creates the assessment instruments on the given provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(MeterName)

	assessments, err := meter.Int64Counter("healthguard_assessments_total",
		metric.WithDescription("Completed assessments by kind and risk tier"))
	if err != nil {
		return nil, fmt.Errorf("failed to create assessments counter: %w", err)
	}
	failures, err := meter.Int64Counter("healthguard_assessment_failures_total",
		metric.WithDescription("Failed assessments by kind and reason"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	duration, err := meter.Float64Histogram("healthguard_assessment_duration_seconds",
		metric.WithDescription("Time to compute and store an assessment"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	requests, err := meter.Int64Counter("healthguard_http_requests_total",
		metric.WithDescription("HTTP requests by route and status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create requests counter: %w", err)
	}

	return &Metrics{
		assessments: assessments,
		failures:    failures,
		duration:    duration,
		requests:    requests,
	}, nil
}

// RecordAssessment counts a completed assessment and its latency.
func (m *Metrics) RecordAssessment(ctx context.Context, kind, tier string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("risk_tier", tier),
	)
	m.assessments.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// RecordFailure counts an assessment that did not complete.
func (m *Metrics) RecordFailure(ctx context.Context, kind, reason string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("reason", reason),
	))
}

// RecordRequest counts one HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int) {
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
