package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"lotto/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL   string
	DatabaseName  string
	StorageDriver string // "postgres" or "memory"

	// NATS configuration
	NATSEnabled bool
	NATSServers string // NATS server addresses (comma-separated)

	// Block hash entropy configuration
	EthRPCURL            string // JSON-RPC endpoint; empty disables block hash lotteries
	EntropyConfirmations uint64 // blocks past the anchor before its hash is used

	// Resolution worker schedule in robfig/cron syntax
	ResolverSchedule string

	// Logging
	LogLevel string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// UsesMemoryStorage reports whether the in-process store is selected
func (c *Config) UsesMemoryStorage() bool {
	return c.StorageDriver == StorageDriverMemory
}

// ConfigureLogging applies the log level and formatter to logrus
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// load loads configuration from the environment, reading .env first when present
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{
		// Database
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DatabaseName:  os.Getenv("DATABASE_NAME"),
		StorageDriver: getEnvWithDefault("STORAGE_DRIVER", StorageDriverPostgres),

		// NATS
		NATSEnabled: getBoolEnv("NATS_ENABLED", false),
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Entropy
		EthRPCURL:            os.Getenv("ETH_RPC_URL"),
		EntropyConfirmations: 12,

		ResolverSchedule: getEnvWithDefault("RESOLVER_SCHEDULE", "@every 30s"),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),

		// OpenTelemetry
		OTelEnabled:              getBoolEnv("OTEL_ENABLED", false),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "lotto"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: 30000,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if confirmations := os.Getenv("ENTROPY_CONFIRMATIONS"); confirmations != "" {
		parsed, err := strconv.ParseUint(confirmations, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ENTROPY_CONFIRMATIONS %q: %w", confirmations, err)
		}
		config.EntropyConfirmations = parsed
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.Environment != "test" && c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
		// If DatabaseName is provided, ensure it's not empty
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.OTelExporterType {
	case "console", "otlp", "none":
	default:
		return fmt.Errorf("unknown OTEL_EXPORTER_TYPE %q", c.OTelExporterType)
	}

	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv parses a boolean environment variable, falling back on a missing or bad value
func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:              "test",
		StorageDriver:            StorageDriverMemory,
		EntropyConfirmations:     2,
		ResolverSchedule:         "@every 1s",
		LogLevel:                 "debug",
		OTelServiceName:          "lotto-test",
		OTelExporterType:         "none",
		OTelExportIntervalMillis: 1000,
	}
}
