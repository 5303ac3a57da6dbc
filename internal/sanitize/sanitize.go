package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/market-insight/internal/model"
)

// FieldCount is the number of columns in an artifact data row
// (Date, Symbol, Open, High, Low, Close, Volume).
const FieldCount = 7

// DefaultMaxPrice is the sanity ceiling for a single price. No listed
// security trades anywhere near it; values at or above it are
// provider glitches or split artifacts.
var DefaultMaxPrice = decimal.NewFromInt(1_000_000_000)

// Rejection reasons. Callers count rejections; they never surface them
// as file failures.
var (
	ErrShortRow  = errors.New("row has too few fields")
	ErrBadDate   = errors.New("unparsable trading date")
	ErrBadPrice  = errors.New("price out of range or not a number")
	ErrBadVolume = errors.New("volume negative or not a number")
)

// Sanitizer converts raw text fields into validated price records.
// It is pure: no I/O, no logging, no shared state.
type Sanitizer struct {
	maxPrice decimal.Decimal
}

// New returns a Sanitizer enforcing the given price ceiling.
// A zero or negative ceiling falls back to DefaultMaxPrice.
func New(maxPrice decimal.Decimal) Sanitizer {
	if maxPrice.Sign() <= 0 {
		maxPrice = DefaultMaxPrice
	}
	return Sanitizer{maxPrice: maxPrice}
}

// SanitizeRow validates one artifact data row. The Symbol column is
// ignored; the artifact's file name is authoritative for the symbol.
func (s Sanitizer) SanitizeRow(fields []string) (model.PriceRecord, error) {
	if len(fields) < FieldCount {
		return model.PriceRecord{}, fmt.Errorf("%w: got %d, want %d", ErrShortRow, len(fields), FieldCount)
	}
	return s.Sanitize(fields[0], fields[2], fields[3], fields[4], fields[5], fields[6])
}

// Sanitize validates the six raw fields of one quote and returns a
// normalized record, or a rejection error describing the first defect
// found.
func (s Sanitizer) Sanitize(date, open, high, low, close, volume string) (model.PriceRecord, error) {
	day, err := ParseTradeDate(date)
	if err != nil {
		return model.PriceRecord{}, err
	}

	rec := model.PriceRecord{TradeDate: day}

	for _, p := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{open, &rec.Open},
		{high, &rec.High},
		{low, &rec.Low},
		{close, &rec.Close},
	} {
		v, err := s.parsePrice(p.raw)
		if err != nil {
			return model.PriceRecord{}, err
		}
		*p.dst = v
	}

	vol, err := parseVolume(volume)
	if err != nil {
		return model.PriceRecord{}, err
	}
	rec.Volume = vol

	return rec, nil
}

// ParseTradeDate reduces a raw date cell to a calendar day. Artifacts
// carry "YYYY-MM-DD HH:MM:SS±HH:MM"; only the leading date component
// is significant.
func ParseTradeDate(raw string) (time.Time, error) {
	day, _, _ := strings.Cut(strings.TrimSpace(raw), " ")
	t, err := time.Parse(model.TradeDateLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
	}
	return t, nil
}

func (s Sanitizer) parsePrice(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrBadPrice, raw)
	}
	if v.Sign() < 0 || v.Cmp(s.maxPrice) >= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrBadPrice, v)
	}
	return v, nil
}

func parseVolume(raw string) (int64, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadVolume, raw)
	}
	// Providers occasionally report fractional volumes; truncate like
	// the store's BIGINT column would.
	vol := v.IntPart()
	if vol < 0 {
		return 0, fmt.Errorf("%w: %s", ErrBadVolume, v)
	}
	return vol, nil
}
