package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/domain/event"
	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/infrastructure/kafka"
	"github.com/healthguard/healthguard/pkg/events"
	pkgkafka "github.com/healthguard/healthguard/pkg/kafka"
	"github.com/healthguard/healthguard/pkg/observability"
)

type mockProducer struct {
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (m *mockProducer) Publish(_ context.Context, topic string, msgs ...pkgkafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.topic = topic
	m.messages = append(m.messages, msgs...)
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	assessmentID := uuid.New()
	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	action := 4
	completed := event.NewAssessmentCompleted(assessmentID, "RECOMMENDATION", 81.2, 64.5,
		"Very High Risk", &action, "Intensive Treatment", 2, 1, "v1", at)
	highRisk := event.NewHighRiskDetected(assessmentID, 81.2, []string{"exercise-induced angina"}, at)

	t.Run("wraps events in envelopes keyed by assessment", func(t *testing.T) {
		producer := &mockProducer{}
		pub := kafka.NewPublisher(producer, "healthguard.assessment.events", observability.DiscardLogger())

		require.NoError(t, pub.Publish(context.Background(), completed, highRisk))

		assert.Equal(t, "healthguard.assessment.events", producer.topic)
		require.Len(t, producer.messages, 2)

		msg := producer.messages[0]
		assert.Equal(t, assessmentID.String(), string(msg.Key))
		assert.Equal(t, event.EventTypeAssessmentCompleted, msg.Headers["event_type"])
		assert.Equal(t, completed.EventID().String(), msg.Headers["event_id"])

		var env events.Envelope
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		assert.Equal(t, event.EventTypeAssessmentCompleted, env.EventType)
		assert.Equal(t, event.AggregateTypeRiskAssessment, env.AggregateType)

		var body map[string]any
		require.NoError(t, json.Unmarshal(env.Payload, &body))
		assert.Equal(t, "Very High Risk", body["risk_tier"])

		assert.Equal(t, event.EventTypeHighRiskDetected, producer.messages[1].Headers["event_type"])
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		producer := &mockProducer{err: errors.New("should not be called")}
		pub := kafka.NewPublisher(producer, "t", observability.DiscardLogger())
		assert.NoError(t, pub.Publish(context.Background()))
	})

	t.Run("producer failure is wrapped", func(t *testing.T) {
		producer := &mockProducer{err: errors.New("leader not available")}
		pub := kafka.NewPublisher(producer, "t", observability.DiscardLogger())

		err := pub.Publish(context.Background(), completed)
		assert.ErrorContains(t, err, "failed to publish events to topic t: leader not available")
	})
}

type recommenderFunc func(ctx context.Context, req dto.RecommendRequest) (dto.RecommendationResponse, error)

func (f recommenderFunc) Execute(ctx context.Context, req dto.RecommendRequest) (dto.RecommendationResponse, error) {
	return f(ctx, req)
}

func TestRequestHandler_Handle(t *testing.T) {
	body := `{"request_id":"r-1","patient":{"age":50,"sex":1,"cp":2,"trestbps":130,"chol":220,"fbs":0,
		"restecg":0,"thalach":160,"exang":0,"oldpeak":0.5,"slope":1,"ca":0,"thal":3}}`

	t.Run("runs the recommendation", func(t *testing.T) {
		var got dto.RecommendRequest
		h := kafka.NewRequestHandler(recommenderFunc(func(_ context.Context, req dto.RecommendRequest) (dto.RecommendationResponse, error) {
			got = req
			return dto.RecommendationResponse{AssessmentID: uuid.New(), RiskTier: "Low Risk"}, nil
		}), observability.DiscardLogger())

		require.NoError(t, h.Handle(context.Background(), pkgkafka.Message{Value: []byte(body)}))
		assert.Equal(t, 130.0, got.Patient["trestbps"])
		assert.Len(t, got.Patient, 13)
	})

	t.Run("acknowledges malformed json", func(t *testing.T) {
		called := false
		h := kafka.NewRequestHandler(recommenderFunc(func(context.Context, dto.RecommendRequest) (dto.RecommendationResponse, error) {
			called = true
			return dto.RecommendationResponse{}, nil
		}), observability.DiscardLogger())

		assert.NoError(t, h.Handle(context.Background(), pkgkafka.Message{Value: []byte("not json")}))
		assert.False(t, called)
	})

	t.Run("acknowledges invalid patients", func(t *testing.T) {
		h := kafka.NewRequestHandler(recommenderFunc(func(context.Context, dto.RecommendRequest) (dto.RecommendationResponse, error) {
			return dto.RecommendationResponse{}, model.NewValidationError("thal", "is required")
		}), observability.DiscardLogger())

		assert.NoError(t, h.Handle(context.Background(), pkgkafka.Message{Value: []byte(body)}))
	})

	t.Run("retries other failures", func(t *testing.T) {
		h := kafka.NewRequestHandler(recommenderFunc(func(context.Context, dto.RecommendRequest) (dto.RecommendationResponse, error) {
			return dto.RecommendationResponse{}, errors.New("failed to save assessment: timeout")
		}), observability.DiscardLogger())

		assert.ErrorContains(t, h.Handle(context.Background(), pkgkafka.Message{Value: []byte(body)}), "timeout")
	})
}
