// Package ingest drives the bulk ingestion pipeline.
//
// Per file: Open -> Sanitize -> Merge (one transaction) -> Commit.
// Files are independent: a fatal error in one records a failure and
// the run continues. Operator cancellation stops between files, after
// the currently open transaction settles.
package ingest
