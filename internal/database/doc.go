// Package database provides connection pool management and schema
// migrations for the permanent store.
//
// Schema:
//   - symbols: unique ticker with a surrogate integer identity
//   - historical_prices: one row per (symbol_id, trade_date)
//
// Migrations are embedded in the binary and applied with
// golang-migrate.
package database
