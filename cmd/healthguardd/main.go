package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/healthguard/healthguard/internal/application/usecase"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/internal/infrastructure/config"
	"github.com/healthguard/healthguard/internal/infrastructure/kafka"
	"github.com/healthguard/healthguard/internal/infrastructure/memory"
	"github.com/healthguard/healthguard/internal/infrastructure/messaging"
	"github.com/healthguard/healthguard/internal/infrastructure/ml"
	"github.com/healthguard/healthguard/internal/infrastructure/policy"
	"github.com/healthguard/healthguard/internal/infrastructure/postgres"
	"github.com/healthguard/healthguard/internal/infrastructure/telemetry"
	grpcpresentation "github.com/healthguard/healthguard/internal/presentation/grpc"
	"github.com/healthguard/healthguard/internal/presentation/rest"
	pkgkafka "github.com/healthguard/healthguard/pkg/kafka"
	"github.com/healthguard/healthguard/pkg/observability"
	pgutil "github.com/healthguard/healthguard/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("healthguard exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting healthguard",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	// Tracing and metrics.
	_, shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer meterProvider.Shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(meterProvider)
	if err != nil {
		return err
	}

	// Domain services. A model that fails to load leaves the service running in
	// degraded mode: health reports it and scoring endpoints return 503.
	clinicalPolicy, err := policy.Load(cfg.Model.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	var engine *service.RecommendationEngine
	loaded, err := ml.Load(cfg.Model.Path, logger)
	if err != nil {
		logger.Error("failed to load risk model, serving degraded", "path", cfg.Model.Path, "error", err)
	} else {
		engine, err = service.NewRecommendationEngine(loaded.Predictor, clinicalPolicy)
		if err != nil {
			return fmt.Errorf("failed to build recommendation engine: %w", err)
		}
	}
	modelVersion := ""
	if engine != nil {
		modelVersion = engine.ModelVersion()
	}

	// Persistence.
	var (
		repo      port.AssessmentRepository
		dbChecker rest.ReadinessCheck
	)
	if cfg.Database.Enabled() {
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsDir, pgutil.Up); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("database migrations applied")
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pgutil.NewPool(dbCtx, pgutil.Config{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns})
		dbCancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to database")

		repo = postgres.NewAssessmentRepository(pool)
		dbChecker = func(ctx context.Context) error { return pgutil.HealthCheck(ctx, pool) }
	} else {
		logger.Warn("DATABASE_URL not set, assessments are kept in memory")
		repo = memory.NewAssessmentRepository()
	}

	// Messaging.
	var publisher port.EventPublisher
	if cfg.Kafka.Enabled() {
		producer, err := pkgkafka.NewProducer(cfg.Kafka.Client())
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = kafka.NewPublisher(producer, cfg.Kafka.Topic, logger)
		logger.Info("publishing events to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}

	// Use cases.
	predictRiskUC := usecase.NewPredictRisk(engine, repo, publisher, metrics)
	recommendUC := usecase.NewRecommendIntervention(engine, repo, publisher, metrics)
	simulateUC := usecase.NewSimulateIntervention(engine, repo, publisher, metrics)
	getAssessmentUC := usecase.NewGetAssessment(repo)
	listAssessmentsUC := usecase.NewListAssessments(repo)

	// gRPC server.
	grpcHandler := grpcpresentation.NewHealthGuardHandler(predictRiskUC, recommendUC, simulateUC, getAssessmentUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		ServiceName: cfg.ServiceName,
		TLSCertFile: cfg.GRPC.TLSCertFile,
		TLSKeyFile:  cfg.GRPC.TLSKeyFile,
		Reflection:  cfg.GRPC.Reflection,
		Serving:     engine != nil,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	healthHandler := rest.NewHealthHandler(cfg.ServiceName, modelVersion, logger)
	if dbChecker != nil {
		healthHandler.WithCheck("database", dbChecker)
	}
	assessmentHandler := rest.NewAssessmentHandler(predictRiskUC, recommendUC, simulateUC, getAssessmentUC, listAssessmentsUC, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      rest.NewRouter(healthHandler, assessmentHandler, metricsHandler, metrics, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Kafka request consumer.
	var consumer *pkgkafka.Consumer
	if cfg.Kafka.ConsumerEnabled {
		handler := kafka.NewRequestHandler(recommendUC, logger)
		consumer, err = pkgkafka.NewConsumer(cfg.Kafka.Client(), cfg.Kafka.RequestTopic, handler.Handle, logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka consumer: %w", err)
		}
		defer consumer.Close()
	}

	// Start servers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if consumer != nil {
		go func() {
			if err := consumer.Start(consumerCtx); err != nil {
				errCh <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
	}

	logger.Info("healthguard started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"model_version", modelVersion,
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down healthguard")
	stopConsumer()
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("healthguard stopped")
	return runErr
}
