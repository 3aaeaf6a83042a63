package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote HealthGuardService.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target. Plaintext is used when creds is nil.
func NewClient(target string, creds credentials.TransportCredentials, opts ...grpc.DialOption) (*Client, error) {
	if creds == nil {
		creds = insecure.NewCredentials()
	}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// PredictRisk scores a patient.
func (c *Client) PredictRisk(ctx context.Context, req *PredictRiskRequest) (*PredictRiskResponse, error) {
	out := new(PredictRiskResponse)
	if err := c.conn.Invoke(ctx, MethodPredictRisk, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecommendIntervention asks for a personalised recommendation.
func (c *Client) RecommendIntervention(ctx context.Context, req *RecommendInterventionRequest) (*RecommendInterventionResponse, error) {
	out := new(RecommendInterventionResponse)
	if err := c.conn.Invoke(ctx, MethodRecommendIntervention, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SimulateIntervention projects one intervention.
func (c *Client) SimulateIntervention(ctx context.Context, req *SimulateInterventionRequest) (*SimulateInterventionResponse, error) {
	out := new(SimulateInterventionResponse)
	if err := c.conn.Invoke(ctx, MethodSimulateIntervention, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAssessment fetches a stored assessment.
func (c *Client) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	out := new(GetAssessmentResponse)
	if err := c.conn.Invoke(ctx, MethodGetAssessment, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
