package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeDateLayout is the calendar-date layout used by artifacts, the
// database and reports.
const TradeDateLayout = "2006-01-02"

// Symbol represents one tradable ticker and its surrogate identity.
type Symbol struct {
	ID     int32  // Surrogate key, assigned once on first insertion
	Ticker string // Unique ticker string (e.g., "AAPL")
}

// PriceRecord is one calendar day's quote for one symbol.
//
// The trading date carries no time-of-day semantics; it is always
// midnight UTC. (symbol, trading date) is unique in the permanent
// store.
type PriceRecord struct {
	TradeDate time.Time // Calendar day, midnight UTC
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64 // Shares traded, never negative
}

// FormatTradeDate renders a trading date the way reports and logs
// print it.
func FormatTradeDate(t time.Time) string {
	return t.Format(TradeDateLayout)
}
