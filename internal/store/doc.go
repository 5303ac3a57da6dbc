// Package store implements the permanent-store side of ingestion: the
// symbol registry (insert-or-fetch ticker identities) and the staging
// loader (COPY into a transaction-scoped table, then a conflict-skip
// merge).
//
// One artifact equals one transaction. The uniqueness constraint on
// (symbol_id, trade_date) is the backstop against double-import no
// matter how a file is retried.
package store
