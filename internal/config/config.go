// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for the HTTP server, the ledger store
// backends, event publication and the budgeting defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/shared"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config holds the complete application configuration.
// Backend sections are only validated when the matching backend is selected.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	CORS        CORSConfig
	Ledger      LedgerConfig
	Budgets     BudgetConfig
	Store       StoreConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env            string
	Name           string
	SeedSampleData bool
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	RoutePrefix     string        // Path prefix every ledger route is mounted under
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// CORSConfig contains cross-origin settings for browser clients
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// LedgerConfig contains ledger behaviour settings
type LedgerConfig struct {
	RecentActivityLimit int
	CurrencySymbol      string
}

// BudgetConfig holds the monthly spending limit per category
type BudgetConfig struct {
	Limits map[shared.Category]decimal.Decimal
}

// StoreConfig selects the event store implementation
type StoreConfig struct {
	Backend string // memory, postgres or mongo
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains Kafka configuration for ledger event publication
type KafkaConfig struct {
	Enabled            bool
	Brokers            string
	LedgerTopic        string
	NumPartitions      int // Number of partitions for topics
	ReplicationFactor  int // Replication factor for topics
	WriteTimeout       time.Duration
	TopicCheckAttempts int           // Partition reads before the topic is treated as missing
	TopicCheckBackoff  time.Duration // Pause between partition reads
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// parseBudgetLimits reads "Food=120000,Transport=45000" into a limit map
func parseBudgetLimits(raw string) (map[shared.Category]decimal.Decimal, error) {
	limits := make(map[shared.Category]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("budget entry %q must be Category=amount", pair)
		}
		category := shared.Category(strings.TrimSpace(name))
		if !category.Valid() {
			return nil, fmt.Errorf("budget entry %q has unknown category", pair)
		}
		limit, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("budget entry %q has invalid amount: %w", pair, err)
		}
		limits[category] = limit
	}
	return limits, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// validate performs validation of all configuration values,
// aggregating every problem into a single error
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.RoutePrefix != "" && !strings.HasPrefix(c.Server.RoutePrefix, "/") {
		validationErrors = append(validationErrors, "SERVER_ROUTE_PREFIX must start with /")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		validationErrors = append(validationErrors, "CORS_ALLOWED_ORIGINS is required")
	}
	for _, origin := range c.CORS.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			validationErrors = append(validationErrors, fmt.Sprintf("CORS_ALLOWED_ORIGINS entry %q must be * or start with http:// or https://", origin))
		}
	}

	// Validate Ledger config
	if c.Ledger.RecentActivityLimit <= 0 {
		validationErrors = append(validationErrors, "LEDGER_RECENT_ACTIVITY_LIMIT must be greater than 0")
	}
	if c.Ledger.CurrencySymbol == "" {
		validationErrors = append(validationErrors, "LEDGER_CURRENCY_SYMBOL is required")
	}
	for category, limit := range c.Budgets.Limits {
		if !limit.IsPositive() {
			validationErrors = append(validationErrors, fmt.Sprintf("BUDGET_LIMITS entry for %s must be greater than 0", category))
		}
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Postgres.URL == "" {
			validationErrors = append(validationErrors, "POSTGRES_URL is required")
		}
		if c.Postgres.MaxConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
		}
		if c.Postgres.MinConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
		}
		if c.Postgres.ConnMaxLifetime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
		}
		if c.Postgres.ConnMaxIdleTime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
		}
		if c.Postgres.MigrationsPath == "" {
			validationErrors = append(validationErrors, "POSTGRES_MIGRATIONS_PATH is required")
		}
	case StoreMongo:
		if c.MongoDB.URI == "" {
			validationErrors = append(validationErrors, "MONGO_URI is required")
		}
		if c.MongoDB.Database == "" {
			validationErrors = append(validationErrors, "MONGO_DATABASE is required")
		}
		if c.MongoDB.Timeout <= 0 {
			validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
		}
		if c.MongoDB.MaxPoolSize <= 0 {
			validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
		}
		if c.MongoDB.MaxConnIdleTime <= 0 {
			validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
		}
	default:
		validationErrors = append(validationErrors, "STORE_BACKEND must be one of memory, postgres, mongo")
	}

	// Kafka is optional; only check it when publication is switched on
	if c.Kafka.Enabled {
		if c.Kafka.Brokers == "" {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
		}
		if c.Kafka.LedgerTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_LEDGER_TOPIC is required")
		}
		if c.Kafka.WriteTimeout <= 0 {
			validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
		}
		if c.Kafka.TopicCheckAttempts <= 0 {
			validationErrors = append(validationErrors, "KAFKA_TOPIC_CHECK_ATTEMPTS must be greater than 0")
		}
		if c.Kafka.TopicCheckBackoff < 0 {
			validationErrors = append(validationErrors, "KAFKA_TOPIC_CHECK_BACKOFF cannot be negative")
		}
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
