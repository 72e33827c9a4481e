package config

import "time"

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig identifies the running process
type AppConfig struct {
	Environment string `yaml:"environment"  env:"ENVIRONMENT"  env-default:"development"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME" env-default:"condominium-ledger"`
	// InstanceID names this process as a lock owner; empty means the hostname
	InstanceID string `yaml:"instance_id" env:"INSTANCE_ID"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// StoreConfig selects the event store and read model backend
type StoreConfig struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"memory"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// AWSConfig holds AWS settings
type AWSConfig struct {
	Region      string `yaml:"region"       env:"AWS_REGION"       env-default:"us-west-2"`
	EventsTable string `yaml:"events_table" env:"EVENTS_TABLE"     env-default:"ledger-events"`
	// EventBusName enables EventBridge publishing when set
	EventBusName     string `yaml:"event_bus_name"    env:"EVENT_BUS_NAME"`
	EventSource      string `yaml:"event_source"      env:"EVENT_SOURCE"      env-default:"condominium.ledger"`
	MetricsNamespace string `yaml:"metrics_namespace" env:"METRICS_NAMESPACE" env-default:"CondominiumLedger"`
}

// LedgerConfig tunes command handling, projections and recovery
type LedgerConfig struct {
	MaxConflictRetries  int           `yaml:"max_conflict_retries"  env:"LEDGER_MAX_CONFLICT_RETRIES"  env-default:"3"`
	ConflictRetryDelay  time.Duration `yaml:"conflict_retry_delay"  env:"LEDGER_CONFLICT_RETRY_DELAY"  env-default:"10ms"`
	ReplayBatchSize     int           `yaml:"replay_batch_size"     env:"LEDGER_REPLAY_BATCH_SIZE"     env-default:"500"`
	RecoveryInterval    time.Duration `yaml:"recovery_interval"     env:"LEDGER_RECOVERY_INTERVAL"     env-default:"5s"`
	RecoveryBatchSize   int           `yaml:"recovery_batch_size"   env:"LEDGER_RECOVERY_BATCH_SIZE"   env-default:"50"`
	RecoveryMaxAttempts int           `yaml:"recovery_max_attempts" env:"LEDGER_RECOVERY_MAX_ATTEMPTS" env-default:"3"`
	RecoveryGrace       time.Duration `yaml:"recovery_grace"        env:"LEDGER_RECOVERY_GRACE"        env-default:"30s"`
	LockLease           time.Duration `yaml:"lock_lease"            env:"LEDGER_LOCK_LEASE"            env-default:"10s"`
	// QueryCacheTTL of zero disables the query cache
	QueryCacheTTL time.Duration `yaml:"query_cache_ttl" env:"LEDGER_QUERY_CACHE_TTL" env-default:"5s"`
}

// BreakerConfig holds the event store circuit breaker settings
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"           env:"BREAKER_ENABLED"           env-default:"true"`
	MaxRequests      uint32        `yaml:"max_requests"      env:"BREAKER_MAX_REQUESTS"      env-default:"5"`
	Interval         time.Duration `yaml:"interval"          env:"BREAKER_INTERVAL"          env-default:"30s"`
	Timeout          time.Duration `yaml:"timeout"           env:"BREAKER_TIMEOUT"           env-default:"60s"`
	FailureThreshold float64       `yaml:"failure_threshold" env:"BREAKER_FAILURE_THRESHOLD" env-default:"0.8"`
	MinRequests      uint32        `yaml:"min_requests"      env:"BREAKER_MIN_REQUESTS"      env-default:"5"`
}

// TracingConfig holds X-Ray settings
type TracingConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLE_TRACING" env-default:"false"`
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	// ListenAddr serves /metrics when set
	ListenAddr string `yaml:"listen_addr" env:"METRICS_LISTEN_ADDR"`
	CloudWatch bool   `yaml:"cloudwatch"  env:"ENABLE_CLOUDWATCH_METRICS" env-default:"false"`
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
