package grpc

// proto.go holds the hand-maintained service descriptor for
// healthguard.v1.HealthGuardService. Messages travel as JSON through jsonCodec.

import (
	"context"
	"encoding/json"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "healthguard.v1.HealthGuardService"

// Full method names.
const (
	MethodPredictRisk           = "/" + ServiceName + "/PredictRisk"
	MethodRecommendIntervention = "/" + ServiceName + "/RecommendIntervention"
	MethodSimulateIntervention  = "/" + ServiceName + "/SimulateIntervention"
	MethodGetAssessment         = "/" + ServiceName + "/GetAssessment"
)

// CodecName is the content subtype clients must request.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

// HealthGuardServiceServer is the server API for HealthGuardService.
type HealthGuardServiceServer interface {
	PredictRisk(context.Context, *PredictRiskRequest) (*PredictRiskResponse, error)
	RecommendIntervention(context.Context, *RecommendInterventionRequest) (*RecommendInterventionResponse, error)
	SimulateIntervention(context.Context, *SimulateInterventionRequest) (*SimulateInterventionResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	mustEmbedUnimplementedHealthGuardServiceServer()
}

// UnimplementedHealthGuardServiceServer provides forward-compatible default implementations.
type UnimplementedHealthGuardServiceServer struct{}

func (UnimplementedHealthGuardServiceServer) PredictRisk(context.Context, *PredictRiskRequest) (*PredictRiskResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PredictRisk not implemented")
}
func (UnimplementedHealthGuardServiceServer) RecommendIntervention(context.Context, *RecommendInterventionRequest) (*RecommendInterventionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecommendIntervention not implemented")
}
func (UnimplementedHealthGuardServiceServer) SimulateIntervention(context.Context, *SimulateInterventionRequest) (*SimulateInterventionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SimulateIntervention not implemented")
}
func (UnimplementedHealthGuardServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedHealthGuardServiceServer) mustEmbedUnimplementedHealthGuardServiceServer() {}

// RegisterHealthGuardServiceServer registers the HealthGuardServiceServer with the gRPC server.
func RegisterHealthGuardServiceServer(s grpclib.ServiceRegistrar, srv HealthGuardServiceServer) {
	s.RegisterService(&_HealthGuardService_serviceDesc, srv)
}

var _HealthGuardService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HealthGuardServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "PredictRisk", Handler: _HealthGuardService_PredictRisk_Handler},
		{MethodName: "RecommendIntervention", Handler: _HealthGuardService_RecommendIntervention_Handler},
		{MethodName: "SimulateIntervention", Handler: _HealthGuardService_SimulateIntervention_Handler},
		{MethodName: "GetAssessment", Handler: _HealthGuardService_GetAssessment_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _HealthGuardService_PredictRisk_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(PredictRiskRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthGuardServiceServer).PredictRisk(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodPredictRisk}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(HealthGuardServiceServer).PredictRisk(ctx, req.(*PredictRiskRequest))
	})
}

func _HealthGuardService_RecommendIntervention_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(RecommendInterventionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthGuardServiceServer).RecommendIntervention(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodRecommendIntervention}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(HealthGuardServiceServer).RecommendIntervention(ctx, req.(*RecommendInterventionRequest))
	})
}

func _HealthGuardService_SimulateIntervention_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(SimulateInterventionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthGuardServiceServer).SimulateIntervention(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodSimulateIntervention}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(HealthGuardServiceServer).SimulateIntervention(ctx, req.(*SimulateInterventionRequest))
	})
}

func _HealthGuardService_GetAssessment_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetAssessmentRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthGuardServiceServer).GetAssessment(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetAssessment}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(HealthGuardServiceServer).GetAssessment(ctx, req.(*GetAssessmentRequest))
	})
}
