package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/market-insight/internal/model"
)

var stagingColumns = []string{"symbol_id", "trade_date", "open", "high", "low", "close", "volume"}

// mergePrices bulk-transfers the records into a transaction-scoped
// staging table and merges them into historical_prices, skipping rows
// whose (symbol_id, trade_date) key already exists. Returns the number
// of rows actually inserted.
//
// COPY keeps the transfer at one round trip per file instead of one
// per row; ON COMMIT DROP discards the staging table whether the
// transaction commits or rolls back.
func (s *Store) mergePrices(ctx context.Context, tx pgx.Tx, symbolID int32, recs []model.PriceRecord) (int64, error) {
	_, err := tx.Exec(ctx, `
		CREATE TEMP TABLE staged_prices (
			symbol_id  INTEGER,
			trade_date DATE,
			open       NUMERIC(18, 6),
			high       NUMERIC(18, 6),
			low        NUMERIC(18, 6),
			close      NUMERIC(18, 6),
			volume     BIGINT
		) ON COMMIT DROP`)
	if err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"staged_prices"}, stagingColumns, copySource(symbolID, recs))
	if err != nil {
		return 0, fmt.Errorf("copy into staging table: %w", err)
	}
	if copied != int64(len(recs)) {
		return 0, fmt.Errorf("staged %d of %d rows", copied, len(recs))
	}

	ct, err := tx.Exec(ctx, `
		INSERT INTO historical_prices (symbol_id, trade_date, open, high, low, close, volume)
		SELECT symbol_id, trade_date, open, high, low, close, volume
		FROM staged_prices
		ON CONFLICT (symbol_id, trade_date) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("merge staged rows: %w", err)
	}

	return ct.RowsAffected(), nil
}

// copySource adapts validated records to the COPY wire format.
func copySource(symbolID int32, recs []model.PriceRecord) pgx.CopyFromSource {
	return pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
		r := recs[i]
		return []any{symbolID, r.TradeDate, r.Open, r.High, r.Low, r.Close, r.Volume}, nil
	})
}
