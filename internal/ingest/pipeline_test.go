package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/market-insight/internal/model"
	"github.com/rickgao/market-insight/internal/sanitize"
)

const artifactHeader = "Date,Symbol,Open,High,Low,Close,Volume"

type fakeStore struct {
	mu       sync.Mutex
	imported map[string][]model.PriceRecord
	calls    map[string]int
	failures map[string]int // fail the first N calls per symbol
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		imported: make(map[string][]model.PriceRecord),
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
}

func (f *fakeStore) ImportPrices(ctx context.Context, ticker string, recs []model.PriceRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	if f.failures[ticker] > 0 {
		f.failures[ticker]--
		return 0, errors.New("connection reset")
	}
	f.imported[ticker] = append([]model.PriceRecord(nil), recs...)
	return int64(len(recs)), nil
}

func testPipeline(t *testing.T, dir string, store Store) *Pipeline {
	t.Helper()
	cfg := Config{
		DataDir:        dir,
		Concurrency:    1,
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
	return New(cfg, sanitize.New(decimal.Decimal{}), store, nil)
}

func writeArtifact(t *testing.T, dir, symbol string, rows []string) {
	t.Helper()
	lines := append([]string{artifactHeader}, rows...)
	path := filepath.Join(dir, symbol+".csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write artifact %s: %v", symbol, err)
	}
}

// quoteRows builds n daily rows for January 2000, optionally
// replacing one close with an out-of-range value.
func quoteRows(symbol string, n int, badCloseDay int) []string {
	rows := make([]string, 0, n)
	for day := 1; day <= n; day++ {
		close := "1.80"
		if day == badCloseDay {
			close = "2000000000"
		}
		rows = append(rows, fmt.Sprintf("2000-01-%02d 00:00:00-05:00,%s,1.50,2.00,1.00,%s,%d", day, symbol, close, 1000+day))
	}
	return rows
}

func TestPipeline_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAA", quoteRows("AAA", 30, 15))
	writeArtifact(t, dir, "BBB", nil) // header only

	store := newFakeStore()
	p := testPipeline(t, dir, store)

	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.FilesTotal != 2 {
		t.Errorf("FilesTotal = %d, want 2", stats.FilesTotal)
	}
	if stats.FilesImported != 1 {
		t.Errorf("FilesImported = %d, want 1", stats.FilesImported)
	}
	if stats.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", stats.FilesSkipped)
	}
	if stats.RowsImported != 29 {
		t.Errorf("RowsImported = %d, want 29", stats.RowsImported)
	}
	if stats.RowsRejected != 1 {
		t.Errorf("RowsRejected = %d, want 1", stats.RowsRejected)
	}

	recs := store.imported["AAA"]
	if len(recs) != 29 {
		t.Fatalf("store received %d records for AAA, want 29", len(recs))
	}
	if got := model.FormatTradeDate(recs[0].TradeDate); got != "2000-01-01" {
		t.Errorf("first trade date = %s, want 2000-01-01", got)
	}
	if _, ok := store.imported["BBB"]; ok {
		t.Error("header-only artifact reached the store")
	}
}

func TestPipeline_FailureIsolation(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAA", quoteRows("AAA", 3, 0))
	writeArtifact(t, dir, "BBB", quoteRows("BBB", 5, 0))

	store := newFakeStore()
	store.failures["AAA"] = 100 // outlasts every retry

	p := testPipeline(t, dir, store)
	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", stats.FilesFailed)
	}
	if stats.FilesImported != 1 {
		t.Errorf("FilesImported = %d, want 1", stats.FilesImported)
	}
	if stats.RowsImported != 5 {
		t.Errorf("RowsImported = %d, want 5", stats.RowsImported)
	}
}

func TestPipeline_RetriesTransientFailure(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAA", quoteRows("AAA", 3, 0))

	store := newFakeStore()
	store.failures["AAA"] = 1 // first attempt fails, retry succeeds

	p := testPipeline(t, dir, store)
	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if store.calls["AAA"] != 2 {
		t.Errorf("store calls = %d, want 2", store.calls["AAA"])
	}
	if stats.FilesImported != 1 || stats.FilesFailed != 0 {
		t.Errorf("FilesImported = %d, FilesFailed = %d, want 1, 0", stats.FilesImported, stats.FilesFailed)
	}
}

func TestPipeline_Cancellation(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAA", quoteRows("AAA", 3, 0))
	writeArtifact(t, dir, "BBB", quoteRows("BBB", 3, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newFakeStore()
	p := testPipeline(t, dir, store)

	stats, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if stats.FilesImported != 0 {
		t.Errorf("FilesImported = %d, want 0 after pre-run cancellation", stats.FilesImported)
	}
	if len(store.calls) != 0 {
		t.Errorf("store received %d calls after cancellation", len(store.calls))
	}
}

func TestPipeline_UnreadableArtifact(t *testing.T) {
	dir := t.TempDir()
	// A bare quote mid-row is a structural defect the CSV reader
	// cannot recover from.
	path := filepath.Join(dir, "CCC.csv")
	content := artifactHeader + "\n2000-01-03,CCC,\"1.5,2.0,1.0,1.8,100\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	writeArtifact(t, dir, "DDD", quoteRows("DDD", 2, 0))

	store := newFakeStore()
	p := testPipeline(t, dir, store)

	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", stats.FilesFailed)
	}
	if stats.FilesImported != 1 {
		t.Errorf("FilesImported = %d, want 1", stats.FilesImported)
	}
}

func TestPipeline_ParallelRun(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		writeArtifact(t, dir, fmt.Sprintf("SYM%d", i), quoteRows(fmt.Sprintf("SYM%d", i), 4, 0))
	}

	store := newFakeStore()
	cfg := Config{
		DataDir:        dir,
		Concurrency:    4,
		MaxRetries:     0,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  time.Millisecond,
	}
	p := New(cfg, sanitize.New(decimal.Decimal{}), store, nil)

	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.FilesImported != 8 {
		t.Errorf("FilesImported = %d, want 8", stats.FilesImported)
	}
	if stats.RowsImported != 32 {
		t.Errorf("RowsImported = %d, want 32", stats.RowsImported)
	}
}
