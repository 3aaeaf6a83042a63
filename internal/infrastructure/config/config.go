package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pkgkafka "github.com/healthguard/healthguard/pkg/kafka"
)

// Config holds all configuration for the HealthGuard service.
type Config struct {
	// Service name for observability
	ServiceName string
	Environment string
	LogLevel    string
	LogFormat   string
	// HTTP API, health and metrics port
	HTTPPort int
	// gRPC server port
	GRPCPort int
	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration

	Database  DatabaseConfig
	Kafka     KafkaConfig
	Model     ModelConfig
	GRPC      GRPCConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds PostgreSQL settings. An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL           string
	MigrationsDir string // embedded migrations are used when empty
	AutoMigrate   bool
	MaxConns      int32
}

// Enabled reports whether a PostgreSQL database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// KafkaConfig holds Kafka settings. No brokers selects the log-only publisher.
type KafkaConfig struct {
	Brokers         []string
	Topic           string
	RequestTopic    string
	ConsumerGroup   string
	ClientID        string
	SASLMechanism   string
	SASLUsername    string
	SASLPassword    string
	ConsumerEnabled bool
	TLS             bool
}

// Enabled reports whether Kafka brokers are configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Client returns the shared client configuration.
func (c KafkaConfig) Client() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       c.Brokers,
		ConsumerGroup: c.ConsumerGroup,
		ClientID:      c.ClientID,
		TLS:           c.TLS,
		SASLEnabled:   c.SASLUsername != "",
		SASLMechanism: c.SASLMechanism,
		SASLUsername:  c.SASLUsername,
		SASLPassword:  c.SASLPassword,
	}
}

// ModelConfig locates the model artifact and the clinical policy file.
// Empty paths select the built-in defaults.
type ModelConfig struct {
	Path       string
	PolicyPath string
}

// GRPCConfig holds optional gRPC transport settings.
type GRPCConfig struct {
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// TLSEnabled reports whether a certificate pair is configured.
func (c GRPCConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// TelemetryConfig holds tracing exporter settings.
type TelemetryConfig struct {
	OTLPEndpoint string
	OTLPInsecure bool
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		ServiceName:     getEnv("SERVICE_NAME", "healthguard"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		HTTPPort:        getEnvInt("HTTP_PORT", 8000),
		GRPCPort:        getEnvInt("GRPC_PORT", 9000),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Database: DatabaseConfig{
			URL:           getEnv("DATABASE_URL", ""),
			MigrationsDir: getEnv("MIGRATIONS_DIR", ""),
			AutoMigrate:   getEnvBool("DATABASE_AUTO_MIGRATE", true),
			MaxConns:      int32(getEnvInt("DATABASE_MAX_CONNS", 10)),
		},
		Kafka: KafkaConfig{
			Brokers:         pkgkafka.ParseBrokers(getEnv("KAFKA_BROKERS", "")),
			Topic:           getEnv("KAFKA_TOPIC", "healthguard.assessment.events"),
			RequestTopic:    getEnv("KAFKA_REQUEST_TOPIC", "healthguard.assessment.requests"),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "healthguard"),
			ClientID:        getEnv("KAFKA_CLIENT_ID", "healthguard"),
			ConsumerEnabled: getEnvBool("KAFKA_CONSUMER_ENABLED", false),
			TLS:             getEnvBool("KAFKA_TLS", false),
			SASLMechanism:   getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:    getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:    getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Model: ModelConfig{
			Path:       getEnv("MODEL_PATH", ""),
			PolicyPath: getEnv("POLICY_PATH", ""),
		},
		GRPC: GRPCConfig{
			TLSCertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			TLSKeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
			Reflection:  getEnvBool("GRPC_REFLECTION", false),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	if err := validPort("HTTP_PORT", c.HTTPPort); err != nil {
		errs = append(errs, err)
	}
	if err := validPort("GRPC_PORT", c.GRPCPort); err != nil {
		errs = append(errs, err)
	}
	if c.HTTPPort == c.GRPCPort {
		errs = append(errs, fmt.Errorf("HTTP_PORT and GRPC_PORT must differ, both are %d", c.HTTPPort))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.Kafka.ConsumerEnabled && !c.Kafka.Enabled() {
		errs = append(errs, errors.New("KAFKA_CONSUMER_ENABLED requires KAFKA_BROKERS"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}
	if c.Kafka.Enabled() {
		if err := c.Kafka.Client().Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DATABASE_MAX_CONNS must be positive, got %d", c.Database.MaxConns))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// HTTPAddress returns the full HTTP listen address.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GRPCAddress returns the full gRPC listen address.
func (c Config) GRPCAddress() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func validPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
