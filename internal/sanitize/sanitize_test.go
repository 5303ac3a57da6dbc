package sanitize

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSanitize_DateNormalization(t *testing.T) {
	s := New(decimal.Decimal{})

	rec, err := s.Sanitize("1980-12-12 00:00:00-05:00", "0.51", "0.52", "0.50", "0.51", "117258400")
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}

	want := time.Date(1980, 12, 12, 0, 0, 0, 0, time.UTC)
	if !rec.TradeDate.Equal(want) {
		t.Errorf("TradeDate = %v, want %v", rec.TradeDate, want)
	}
}

func TestSanitize_Rejections(t *testing.T) {
	s := New(decimal.Decimal{})

	tests := []struct {
		name    string
		date    string
		o, h    string
		l, c    string
		volume  string
		wantErr error
	}{
		{"close at 2 billion", "2020-01-02", "1", "2", "1", "2000000000", "10", ErrBadPrice},
		{"negative price", "2020-01-02", "-0.01", "2", "1", "1.5", "10", ErrBadPrice},
		{"price is NaN", "2020-01-02", "NaN", "2", "1", "1.5", "10", ErrBadPrice},
		{"non-numeric price", "2020-01-02", "abc", "2", "1", "1.5", "10", ErrBadPrice},
		{"negative volume", "2020-01-02", "1", "2", "1", "1.5", "-1", ErrBadVolume},
		{"non-numeric volume", "2020-01-02", "1", "2", "1", "1.5", "n/a", ErrBadVolume},
		{"garbage date", "02/01/2020", "1", "2", "1", "1.5", "10", ErrBadDate},
		{"empty date", "", "1", "2", "1", "1.5", "10", ErrBadDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Sanitize(tt.date, tt.o, tt.h, tt.l, tt.c, tt.volume)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Sanitize error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitize_AcceptsBelowCeiling(t *testing.T) {
	s := New(decimal.Decimal{})

	rec, err := s.Sanitize("2020-01-02", "1", "999999999.999999", "1", "999999999.999999", "0")
	if err != nil {
		t.Fatalf("Sanitize rejected in-range row: %v", err)
	}
	if rec.Close.String() != "999999999.999999" {
		t.Errorf("Close = %s, want 999999999.999999", rec.Close)
	}
}

func TestSanitize_VolumeTruncation(t *testing.T) {
	s := New(decimal.Decimal{})

	rec, err := s.Sanitize("2020-01-02", "1", "2", "1", "1.5", "123.9")
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	if rec.Volume != 123 {
		t.Errorf("Volume = %d, want 123", rec.Volume)
	}
}

func TestSanitize_CustomCeiling(t *testing.T) {
	s := New(decimal.NewFromInt(100))

	if _, err := s.Sanitize("2020-01-02", "1", "2", "1", "100", "10"); !errors.Is(err, ErrBadPrice) {
		t.Errorf("price equal to ceiling should be rejected, got %v", err)
	}
	if _, err := s.Sanitize("2020-01-02", "1", "2", "1", "99.99", "10"); err != nil {
		t.Errorf("price below ceiling rejected: %v", err)
	}
}

func TestSanitizeRow(t *testing.T) {
	s := New(decimal.Decimal{})

	_, err := s.SanitizeRow([]string{"2020-01-02", "AAPL", "1", "2"})
	if !errors.Is(err, ErrShortRow) {
		t.Errorf("short row error = %v, want %v", err, ErrShortRow)
	}

	rec, err := s.SanitizeRow([]string{"2020-01-02 00:00:00-05:00", "AAPL", "1", "2", "0.5", "1.5", "1000"})
	if err != nil {
		t.Fatalf("SanitizeRow failed: %v", err)
	}
	if rec.Volume != 1000 {
		t.Errorf("Volume = %d, want 1000", rec.Volume)
	}
}
