package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/domain/model"
	pkgkafka "github.com/healthguard/healthguard/pkg/kafka"
)

// Recommender runs the recommendation use case.
type Recommender interface {
	Execute(ctx context.Context, req dto.RecommendRequest) (dto.RecommendationResponse, error)
}

// AssessmentRequest is the message body on the request topic.
type AssessmentRequest struct {
	RequestID string           `json:"request_id"`
	Patient   dto.PatientInput `json:"patient"`
}

// RequestHandler turns assessment requests from Kafka into recommendations.
// Malformed and invalid requests are logged and acknowledged. Any other failure
// is returned, and the consumer retries the message until it succeeds.
type RequestHandler struct {
	recommender Recommender
	logger      *slog.Logger
}

// NewRequestHandler creates a new request handler.
func NewRequestHandler(recommender Recommender, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{recommender: recommender, logger: logger}
}

// Handle processes one message. It satisfies pkgkafka.Handler.
func (h *RequestHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var req AssessmentRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		h.logger.WarnContext(ctx, "dropping malformed assessment request",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()),
		)
		return nil
	}

	resp, err := h.recommender.Execute(ctx, dto.RecommendRequest{Patient: req.Patient})
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			h.logger.WarnContext(ctx, "dropping invalid assessment request",
				slog.String("request_id", req.RequestID),
				slog.Any("violations", verr.Violations),
			)
			return nil
		}
		return err
	}

	h.logger.InfoContext(ctx, "assessment request processed",
		slog.String("request_id", req.RequestID),
		slog.String("assessment_id", resp.AssessmentID.String()),
		slog.String("risk_tier", resp.RiskTier),
		slog.Int("recommended_action", resp.RecommendedAction),
	)
	return nil
}
