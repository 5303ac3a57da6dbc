package config

import "time"

// Config is the root configuration shared by the importer and the
// validator.
type Config struct {
	Database DBConfig       `yaml:"database"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Validate ValidateConfig `yaml:"validate"`
}

// DBConfig holds the permanent-store connection.
type DBConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Name             string        `yaml:"name"`
	User             string        `yaml:"user"`
	Password         string        `yaml:"password"`
	SSLMode          string        `yaml:"ssl_mode"`
	MaxConns         int           `yaml:"max_conns"`
	MinConns         int           `yaml:"min_conns"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// Enabled reports whether a database connection is configured at all.
// The validator can run without one (artifact-only reconciliation).
func (db *DBConfig) Enabled() bool {
	return db.Host != ""
}

// IngestConfig holds bulk ingestion settings.
type IngestConfig struct {
	DataDir        string        `yaml:"data_dir"`        // Directory of per-symbol CSV artifacts
	Concurrency    int           `yaml:"concurrency"`     // Files processed in parallel (1 = sequential)
	MaxPrice       int64         `yaml:"max_price"`       // Sanity ceiling for a single price
	MaxRetries     int           `yaml:"max_retries"`     // Retries per file on transient storage failures
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay"`
}

// ValidateConfig holds validation-pass settings.
type ValidateConfig struct {
	DataDir      string `yaml:"data_dir"`      // Directory of artifacts to audit
	ExpectedFile string `yaml:"expected_file"` // CSV with a Symbol column (symbol universe)
	FailedFile   string `yaml:"failed_file"`   // Newline-delimited tickers known to have failed upstream
	TopN         int    `yaml:"top_n"`         // Symbols listed in the row-count ranking
}
