// Package validate implements the read-only audit of the collected
// corpus: per-artifact structure checks, corpus-wide statistics, and
// the expected/collected/failed reconciliation that separates
// intentional exclusions from silent data loss.
//
// The pass never mutates ingested data and may run concurrently with,
// or long after, ingestion.
package validate
