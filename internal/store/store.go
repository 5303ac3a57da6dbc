package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/market-insight/internal/model"
)

// Store owns all access to the permanent price history.
type Store struct {
	pool        *pgxpool.Pool
	logger      *slog.Logger
	stmtTimeout time.Duration

	// Ticker -> identity cache. Identities are immutable once
	// assigned, so entries never invalidate.
	mu      sync.RWMutex
	symbols map[string]int32
}

// New creates a Store on top of an existing pool. stmtTimeout bounds
// every per-file database interaction.
func New(pool *pgxpool.Pool, stmtTimeout time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:        pool,
		logger:      logger,
		stmtTimeout: stmtTimeout,
		symbols:     make(map[string]int32),
	}
}

// ImportPrices merges one artifact's validated records into the
// permanent store inside a single transaction: resolve the symbol,
// bulk-copy into a transaction-scoped staging table, then insert with
// conflict-skip on (symbol_id, trade_date).
//
// The returned count is the number of rows considered (pre-merge);
// duplicate suppression happens invisibly at the storage layer, which
// is what makes re-importing an already-imported file a no-op.
func (s *Store) ImportPrices(ctx context.Context, ticker string, recs []model.PriceRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.stmtTimeout)
	defer cancel()

	var symbolID int32
	var inserted int64
	err := s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		symbolID, err = s.ResolveSymbol(ctx, tx, ticker)
		if err != nil {
			return err
		}
		inserted, err = s.mergePrices(ctx, tx, symbolID, recs)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", ticker, err)
	}

	// Only a committed identity may be cached; a rollback would have
	// undone a first-sight insert, and a retry must re-resolve.
	s.cacheSymbol(ticker, symbolID)

	s.logger.Debug("merged prices",
		"symbol", ticker,
		"symbol_id", symbolID,
		"rows", len(recs),
		"inserted", inserted,
		"duplicates", int64(len(recs))-inserted,
	)
	return int64(len(recs)), nil
}

// IngestedSymbols returns the set of tickers that have at least one
// price row in the permanent store.
func (s *Store) IngestedSymbols(ctx context.Context) (map[string]struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, s.stmtTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT symbols.symbol
		FROM symbols
		JOIN historical_prices USING (symbol_id)`)
	if err != nil {
		return nil, fmt.Errorf("query ingested symbols: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("scan ingested symbol: %w", err)
		}
		set[ticker] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ingested symbols: %w", err)
	}
	return set, nil
}

// runTx runs f inside one transaction, rolling back on error.
func (s *Store) runTx(ctx context.Context, f func(ctx context.Context, tx pgx.Tx) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := f(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
