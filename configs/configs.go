// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// Cumplo contains the upstream marketplace API settings.
	Cumplo CumploConfig

	// Aggregator contains settings for the fetch/merge pipeline.
	Aggregator AggregatorConfig

	// Kafka contains connection settings for the notification topic.
	Kafka KafkaConfig

	// DBDSN is the ClickHouse connection string for the snapshot store.
	DBDSN string

	// UsersFile is an optional JSON file seeding the in-memory user store.
	UsersFile string

	// ServerPort is the port the HTTP API listens on.
	ServerPort string

	// LogLevel is the logrus level name (debug, info, warn, error).
	LogLevel string
}

// CumploConfig holds upstream API settings for the three Cumplo surfaces.
type CumploConfig struct {
	// GraphQLURL is the endpoint of the listing (GraphQL) API.
	GraphQLURL string

	// GlobalAPIURL is the base URL of the detail (REST) API.
	GlobalAPIURL string

	// HTMLBaseURL is the base URL of the server-rendered detail pages.
	HTMLBaseURL string

	// CreditDetailTitle is the marker phrase a detail page must contain.
	// Compared against cleaned (uppercased, diacritic-free) page text.
	CreditDetailTitle string

	// SimulationAmount is the principal used for payment simulations.
	SimulationAmount int

	// RetryAttempts is the per-adapter retry budget for transient decode errors.
	RetryAttempts int

	// RetryDelay is the fixed delay between retry attempts.
	RetryDelay time.Duration

	// ListingRatePerSecond throttles calls against the listing API.
	ListingRatePerSecond float64
}

// AggregatorConfig holds settings for the enrichment fan-out and result cache.
type AggregatorConfig struct {
	// MaxWorkers bounds the number of items enriched concurrently.
	MaxWorkers int

	// CacheTTL is how long an assembled result set stays valid.
	CacheTTL time.Duration
}

// KafkaConfig holds Kafka connection settings for promising-request events.
type KafkaConfig struct {
	// Broker is the Kafka broker address (e.g., "localhost:9092").
	Broker string

	// Topic is the Kafka topic promising funding requests are published to.
	Topic string
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("CLICKHOUSE_USER", "default")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "")
	dbHost := getEnv("CLICKHOUSE_HOST", "localhost")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "default")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		Cumplo: CumploConfig{
			GraphQLURL:           getEnv("CUMPLO_GRAPHQL_API", "https://cumplo.com/graphql"),
			GlobalAPIURL:         getEnv("CUMPLO_GLOBAL_API", "https://api.cumplo.com"),
			HTMLBaseURL:          getEnv("CUMPLO_HTML_API", "https://secure.cumplo.cl/credito"),
			CreditDetailTitle:    getEnv("CREDIT_DETAIL_TITLE", "INFORMACION DEL CREDITO"),
			SimulationAmount:     getEnvInt("SIMULATION_AMOUNT", 1_000_000),
			RetryAttempts:        getEnvInt("RETRY_ATTEMPTS", 5),
			RetryDelay:           time.Duration(getEnvInt("RETRY_DELAY_SECONDS", 1)) * time.Second,
			ListingRatePerSecond: getEnvFloat("LISTING_RATE_LIMIT", 2),
		},
		Aggregator: AggregatorConfig{
			MaxWorkers: getEnvInt("MAX_WORKERS", 20),
			CacheTTL:   time.Duration(getEnvInt("CACHE_TTL_SECONDS", 120)) * time.Second,
		},
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:  getEnv("KAFKA_PROMISING_TOPIC", "promising-funding-requests"),
		},
		DBDSN:      getDatabaseDSN(),
		UsersFile:  getEnv("USERS_FILE", ""),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
