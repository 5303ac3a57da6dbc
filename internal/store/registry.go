package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ResolveSymbol maps a ticker to its stable identity, creating it on
// first sight. The insert-or-fetch is atomic under the uniqueness
// constraint on symbols.symbol: two concurrent resolvers of the same
// new ticker get the same identity, and neither sees an error.
// Identities are never reused or renumbered.
//
// The identity is not cached here: a freshly inserted symbols row is
// undone if the surrounding transaction rolls back, so the caller
// caches only after commit.
func (s *Store) ResolveSymbol(ctx context.Context, tx pgx.Tx, ticker string) (int32, error) {
	if id, ok := s.cachedSymbol(ticker); ok {
		return id, nil
	}

	var id int32
	err := tx.QueryRow(ctx, `
		INSERT INTO symbols (symbol)
		VALUES ($1)
		ON CONFLICT (symbol) DO NOTHING
		RETURNING symbol_id`, ticker).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Lost the race (or a prior run inserted it); fetch the
		// existing identity.
		if err := tx.QueryRow(ctx, `SELECT symbol_id FROM symbols WHERE symbol = $1`, ticker).Scan(&id); err != nil {
			return 0, fmt.Errorf("fetch symbol %q: %w", ticker, err)
		}
	case err != nil:
		return 0, fmt.Errorf("insert symbol %q: %w", ticker, err)
	}

	return id, nil
}

func (s *Store) cachedSymbol(ticker string) (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.symbols[ticker]
	return id, ok
}

func (s *Store) cacheSymbol(ticker string, id int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols[ticker] = id
}
