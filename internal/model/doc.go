// Package model defines shared data types used across the ingestion
// pipeline and the validation pass.
//
// Conventions:
//   - Prices: decimal values matching the NUMERIC(18, 6) columns
//   - Trading dates: calendar days at midnight UTC
//   - Identities: int32 surrogate keys for symbols
package model
