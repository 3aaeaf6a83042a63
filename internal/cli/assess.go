package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/grpc/credentials"
	"gopkg.in/yaml.v3"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/application/usecase"
	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/internal/infrastructure/memory"
	"github.com/healthguard/healthguard/internal/infrastructure/messaging"
	"github.com/healthguard/healthguard/internal/infrastructure/ml"
	"github.com/healthguard/healthguard/internal/infrastructure/policy"
	"github.com/healthguard/healthguard/internal/infrastructure/telemetry"
	grpcpresentation "github.com/healthguard/healthguard/internal/presentation/grpc"
	"github.com/healthguard/healthguard/pkg/observability"
	"github.com/healthguard/healthguard/pkg/tlsutil"
)

const remoteTimeout = 10 * time.Second

// assessor runs assessments either in process or against a remote server.
type assessor interface {
	Predict(ctx context.Context, patient dto.PatientInput) (any, error)
	Recommend(ctx context.Context, patient dto.PatientInput) (any, error)
	Simulate(ctx context.Context, patient dto.PatientInput, action int) (any, error)
	Close() error
}

func (a *app) newPredictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict PATIENT_FILE",
		Short: "Score a patient's cardiovascular disease risk",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			a.bind(cmd, keyServer, keyTLSCA, keyTLSInsecure)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAssessment(cmd.Context(), args[0], func(ctx context.Context, as assessor, p dto.PatientInput) (any, error) {
				return as.Predict(ctx, p)
			})
		},
	}
	addRemoteFlags(cmd)
	return cmd
}

func (a *app) newRecommendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend PATIENT_FILE",
		Short: "Recommend an intervention for a patient",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			a.bind(cmd, keyServer, keyTLSCA, keyTLSInsecure)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAssessment(cmd.Context(), args[0], func(ctx context.Context, as assessor, p dto.PatientInput) (any, error) {
				return as.Recommend(ctx, p)
			})
		},
	}
	addRemoteFlags(cmd)
	return cmd
}

func (a *app) newSimulateCommand() *cobra.Command {
	var action int
	cmd := &cobra.Command{
		Use:   "simulate PATIENT_FILE",
		Short: "Project the effect of one intervention (0-4) on a patient",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			a.bind(cmd, keyServer, keyTLSCA, keyTLSInsecure)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAssessment(cmd.Context(), args[0], func(ctx context.Context, as assessor, p dto.PatientInput) (any, error) {
				return as.Simulate(ctx, p, action)
			})
		},
	}
	cmd.Flags().IntVarP(&action, "action", "a", 0, "intervention id: 0 monitor only, 1 lifestyle, 2 single medication, 3 combination therapy, 4 intensive treatment")
	_ = cmd.MarkFlagRequired("action")
	addRemoteFlags(cmd)
	return cmd
}

func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().String(keyServer, "", "healthguardd gRPC address (runs in process when empty)")
	cmd.Flags().String(keyTLSCA, "", "CA certificate for a TLS server")
	cmd.Flags().Bool(keyTLSInsecure, false, "skip TLS certificate verification")
}

func (a *app) runAssessment(
	ctx context.Context,
	path string,
	run func(ctx context.Context, as assessor, p dto.PatientInput) (any, error),
) error {
	patient, err := readPatient(path)
	if err != nil {
		return err
	}

	as, err := a.newAssessor()
	if err != nil {
		return err
	}
	defer as.Close()

	result, err := run(ctx, as, patient)
	if err != nil {
		return err
	}
	return a.render(result)
}

func (a *app) newAssessor() (assessor, error) {
	if server := a.v.GetString(keyServer); server != "" {
		return a.newRemoteAssessor(server)
	}
	return a.newLocalAssessor()
}

// readPatient loads a patient from a JSON or YAML file. "-" reads JSON from stdin.
func readPatient(path string) (dto.PatientInput, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read patient file: %w", err)
	}

	var patient dto.PatientInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &patient)
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		err = dec.Decode(&patient)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse patient file %s: %w", path, err)
	}
	if len(patient) == 0 {
		return nil, fmt.Errorf("patient file %s is empty", path)
	}
	return patient, nil
}

// localAssessor runs the use cases in process against an in-memory store.
type localAssessor struct {
	predict   *usecase.PredictRisk
	recommend *usecase.RecommendIntervention
	simulate  *usecase.SimulateIntervention
}

func (a *app) newLocalAssessor() (*localAssessor, error) {
	engine, _, err := a.loadEngine()
	if err != nil {
		return nil, err
	}

	logger := observability.DiscardLogger()
	metrics, err := telemetry.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		return nil, err
	}
	repo := memory.NewAssessmentRepository()
	publisher := messaging.NewLogPublisher(logger)

	return &localAssessor{
		predict:   usecase.NewPredictRisk(engine, repo, publisher, metrics),
		recommend: usecase.NewRecommendIntervention(engine, repo, publisher, metrics),
		simulate:  usecase.NewSimulateIntervention(engine, repo, publisher, metrics),
	}, nil
}

func (l *localAssessor) Predict(ctx context.Context, p dto.PatientInput) (any, error) {
	return l.predict.Execute(ctx, dto.PredictRequest{Patient: p})
}

func (l *localAssessor) Recommend(ctx context.Context, p dto.PatientInput) (any, error) {
	return l.recommend.Execute(ctx, dto.RecommendRequest{Patient: p})
}

func (l *localAssessor) Simulate(ctx context.Context, p dto.PatientInput, action int) (any, error) {
	return l.simulate.Execute(ctx, dto.SimulateRequest{Patient: p, Action: &action})
}

func (l *localAssessor) Close() error { return nil }

// loadEngine builds the recommendation engine from the configured model and policy.
func (a *app) loadEngine() (*service.RecommendationEngine, ml.LoadedModel, error) {
	loaded, err := ml.Load(a.v.GetString(keyModel), a.logger())
	if err != nil {
		return nil, ml.LoadedModel{}, err
	}
	clinicalPolicy, err := policy.Load(a.v.GetString(keyPolicy))
	if err != nil {
		return nil, ml.LoadedModel{}, err
	}
	engine, err := service.NewRecommendationEngine(loaded.Predictor, clinicalPolicy)
	if err != nil {
		return nil, ml.LoadedModel{}, fmt.Errorf("failed to build recommendation engine: %w", err)
	}
	return engine, loaded, nil
}

// remoteAssessor calls a healthguardd gRPC server.
type remoteAssessor struct {
	client *grpcpresentation.Client
}

func (a *app) newRemoteAssessor(server string) (*remoteAssessor, error) {
	var creds credentials.TransportCredentials
	if ca, skip := a.v.GetString(keyTLSCA), a.v.GetBool(keyTLSInsecure); ca != "" || skip {
		c, err := tlsutil.ClientTLSConfig(ca, skip)
		if err != nil {
			return nil, err
		}
		creds = c
	}

	client, err := grpcpresentation.NewClient(server, creds)
	if err != nil {
		return nil, err
	}
	return &remoteAssessor{client: client}, nil
}

func (r *remoteAssessor) Predict(ctx context.Context, p dto.PatientInput) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	resp, err := r.client.PredictRisk(ctx, &grpcpresentation.PredictRiskRequest{Patient: p})
	if err != nil {
		return nil, err
	}
	return resp.Prediction, nil
}

func (r *remoteAssessor) Recommend(ctx context.Context, p dto.PatientInput) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	resp, err := r.client.RecommendIntervention(ctx, &grpcpresentation.RecommendInterventionRequest{Patient: p})
	if err != nil {
		return nil, err
	}
	return resp.Recommendation, nil
}

func (r *remoteAssessor) Simulate(ctx context.Context, p dto.PatientInput, action int) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	a := int32(action)
	resp, err := r.client.SimulateIntervention(ctx, &grpcpresentation.SimulateInterventionRequest{Patient: p, Action: &a})
	if err != nil {
		return nil, err
	}
	return resp.Simulation, nil
}

func (r *remoteAssessor) Close() error { return r.client.Close() }
