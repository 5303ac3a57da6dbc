package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/market-insight/internal/model"
	"github.com/rickgao/market-insight/internal/sanitize"
)

// Store is the permanent-store surface the pipeline needs. The real
// implementation wraps each call in one transaction.
type Store interface {
	// ImportPrices merges one artifact's records and returns the
	// number of rows considered (pre-merge).
	ImportPrices(ctx context.Context, ticker string, recs []model.PriceRecord) (int64, error)
}

// Config holds pipeline settings.
type Config struct {
	DataDir        string        // Directory of per-symbol CSV artifacts
	Concurrency    int           // Files processed in parallel (1 = sequential)
	MaxRetries     int           // Retries per file on transient storage failures
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// Pipeline drives ingestion over a directory of artifacts. Files are
// independent units of work: one file's failure never aborts the rest.
type Pipeline struct {
	cfg       Config
	store     Store
	sanitizer sanitize.Sanitizer
	logger    *slog.Logger

	counters counters
}

// New creates a Pipeline. Every log line of a run carries a fresh
// run identifier.
func New(cfg Config, san sanitize.Sanitizer, store Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Pipeline{
		cfg:       cfg,
		store:     store,
		sanitizer: san,
		logger:    logger.With("run_id", uuid.New()),
	}
}

// Run ingests every artifact under the data directory and returns the
// aggregate statistics. Cancellation is observed between files only;
// the returned error is ctx.Err() when the run was cut short, and the
// partial statistics are still valid.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	files, err := p.discover()
	if err != nil {
		return Stats{}, err
	}

	p.logger.Info("starting import",
		"files", len(files),
		"data_dir", p.cfg.DataDir,
		"concurrency", p.cfg.Concurrency,
	)

	start := time.Now()

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)

	var stopped error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			stopped = err
			break
		}
		file := file
		g.Go(func() error {
			p.processFile(ctx, file)
			return nil
		})
	}
	_ = g.Wait()

	stats := p.counters.snapshot(len(files), time.Since(start))
	p.logger.Info("import finished",
		"files_imported", stats.FilesImported,
		"files_skipped", stats.FilesSkipped,
		"files_failed", stats.FilesFailed,
		"rows_imported", stats.RowsImported,
		"rows_rejected", stats.RowsRejected,
		"elapsed", stats.Elapsed,
		"rows_per_sec", fmt.Sprintf("%.0f", stats.RowsPerSecond()),
	)
	return stats, stopped
}

// discover lists artifacts in deterministic order. The file stem is
// the symbol.
func (p *Pipeline) discover() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(p.cfg.DataDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list artifacts in %s: %w", p.cfg.DataDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// processFile runs the per-file state machine: open, sanitize, merge
// in one transaction, commit. Row rejections are counted, not errors;
// anything unrecoverable marks the file failed and the run moves on.
func (p *Pipeline) processFile(ctx context.Context, path string) {
	ticker := symbolFromPath(path)
	logger := p.logger.With("symbol", ticker)

	recs, rejected, err := p.readArtifact(path)
	if err != nil {
		logger.Error("unreadable artifact", "file", filepath.Base(path), "error", err)
		p.counters.filesFailed.Add(1)
		return
	}
	p.counters.rowsRejected.Add(int64(rejected))

	if len(recs) == 0 {
		logger.Debug("no valid rows, skipping", "rejected", rejected)
		p.counters.filesSkipped.Add(1)
		return
	}

	// The open transaction must settle even if the operator cancels
	// the run; cancellation is honored between files, and the store
	// call is bounded by its own statement timeout.
	dbctx := context.WithoutCancel(ctx)

	var considered int64
	op := func() error {
		n, err := p.store.ImportPrices(dbctx, ticker, recs)
		considered = n
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.RetryBaseDelay
	bo.MaxInterval = p.cfg.RetryMaxDelay
	bo.MaxElapsedTime = 0

	err = backoff.RetryNotify(op, backoff.WithMaxRetries(bo, uint64(p.cfg.MaxRetries)),
		func(err error, next time.Duration) {
			logger.Warn("import failed, retrying", "error", err, "backoff", next)
		})
	if err != nil {
		logger.Error("import failed", "error", err)
		p.counters.filesFailed.Add(1)
		return
	}

	p.counters.filesImported.Add(1)
	p.counters.rowsImported.Add(considered)
	logger.Debug("imported artifact", "rows", considered, "rejected", rejected)
}

// readArtifact parses one CSV artifact and sanitizes every data row.
// The header line is positional, not validated here; the validation
// pass audits headers separately.
func (p *Pipeline) readArtifact(path string) (recs []model.PriceRecord, rejected int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		rec, err := p.sanitizer.SanitizeRow(fields)
		if err != nil {
			rejected++
			continue
		}
		recs = append(recs, rec)
	}

	return recs, rejected, nil
}

func symbolFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
