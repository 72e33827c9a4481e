package config

import (
	"fmt"
	"slices"
)

var (
	validDrivers   = []string{DriverMemory, DriverPostgres, DriverDynamoDB}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate checks the loaded configuration; Load calls it
func (c *Config) Validate() error {
	if !slices.Contains(validDrivers, c.Store.Driver) {
		return fmt.Errorf("store.driver must be one of %v (got %q)", validDrivers, c.Store.Driver)
	}
	if !slices.Contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v (got %q)", validLogLevels, c.Log.Level)
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
		}
	case DriverDynamoDB:
		if c.AWS.EventsTable == "" {
			return fmt.Errorf("aws.events_table is required for the dynamodb driver")
		}
	}

	if err := c.Ledger.validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if c.Breaker.Enabled && (c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1) {
		return fmt.Errorf("breaker.failure_threshold must be in (0, 1] (got %v)", c.Breaker.FailureThreshold)
	}
	return nil
}

func (l *LedgerConfig) validate() error {
	if l.MaxConflictRetries < 0 {
		return fmt.Errorf("max_conflict_retries must be >= 0 (got %d)", l.MaxConflictRetries)
	}
	if l.ReplayBatchSize <= 0 {
		return fmt.Errorf("replay_batch_size must be > 0 (got %d)", l.ReplayBatchSize)
	}
	if l.RecoveryBatchSize <= 0 {
		return fmt.Errorf("recovery_batch_size must be > 0 (got %d)", l.RecoveryBatchSize)
	}
	if l.RecoveryMaxAttempts <= 0 {
		return fmt.Errorf("recovery_max_attempts must be > 0 (got %d)", l.RecoveryMaxAttempts)
	}
	if l.RecoveryInterval <= 0 {
		return fmt.Errorf("recovery_interval must be > 0 (got %s)", l.RecoveryInterval)
	}
	if l.QueryCacheTTL < 0 {
		return fmt.Errorf("query_cache_ttl must be >= 0 (got %s)", l.QueryCacheTTL)
	}
	return nil
}
