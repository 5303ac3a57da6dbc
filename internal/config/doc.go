// Package config loads YAML configuration for the importer and the
// validator.
//
// Files may reference environment variables with ${VAR} syntax; they
// are expanded before parsing. Defaults are applied by
// LoadWithDefaults, and each binary validates only the sections it
// uses.
package config
