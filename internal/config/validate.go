package config

import (
	"errors"
	"fmt"
)

// ValidateImporter checks the fields the importer requires. The
// importer cannot run without a reachable store configuration.
func (c *Config) ValidateImporter() error {
	if c.Ingest.DataDir == "" {
		return errors.New("ingest.data_dir is required")
	}
	if c.Ingest.Concurrency < 1 {
		return errors.New("ingest.concurrency must be >= 1")
	}
	if c.Ingest.MaxPrice < 1 {
		return errors.New("ingest.max_price must be >= 1")
	}
	if c.Ingest.MaxRetries < 0 {
		return errors.New("ingest.max_retries must be >= 0")
	}
	if !c.Database.Enabled() {
		return errors.New("database.host is required")
	}
	return c.Database.validate("database")
}

// ValidateValidator checks the fields the validation pass requires.
// Database settings are optional; when present they must be complete.
func (c *Config) ValidateValidator() error {
	if c.Validate.DataDir == "" {
		return errors.New("validate.data_dir is required")
	}
	if c.Validate.ExpectedFile == "" {
		return errors.New("validate.expected_file is required")
	}
	if c.Validate.TopN < 1 {
		return errors.New("validate.top_n must be >= 1")
	}
	if c.Database.Enabled() {
		return c.Database.validate("database")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
