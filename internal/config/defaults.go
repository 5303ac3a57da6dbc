package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultStatementTimeout = 5 * time.Minute
	DefaultConcurrency      = 1
	DefaultMaxPrice         = 1_000_000_000
	DefaultMaxRetries       = 3
	DefaultRetryBaseDelay   = 1 * time.Second
	DefaultRetryMaxDelay    = 30 * time.Second
	DefaultTopN             = 10
)

func (c *Config) applyDefaults() {
	applyDBDefaults(&c.Database)

	// Ingest defaults
	if c.Ingest.Concurrency == 0 {
		c.Ingest.Concurrency = DefaultConcurrency
	}
	if c.Ingest.MaxPrice == 0 {
		c.Ingest.MaxPrice = DefaultMaxPrice
	}
	if c.Ingest.MaxRetries == 0 {
		c.Ingest.MaxRetries = DefaultMaxRetries
	}
	if c.Ingest.RetryBaseDelay == 0 {
		c.Ingest.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.Ingest.RetryMaxDelay == 0 {
		c.Ingest.RetryMaxDelay = DefaultRetryMaxDelay
	}

	// Validate defaults
	if c.Validate.TopN == 0 {
		c.Validate.TopN = DefaultTopN
	}
	if c.Validate.DataDir == "" {
		c.Validate.DataDir = c.Ingest.DataDir
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
	if db.StatementTimeout == 0 {
		db.StatementTimeout = DefaultStatementTimeout
	}
}
