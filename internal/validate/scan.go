package validate

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rickgao/market-insight/internal/sanitize"
)

// ExpectedHeader is the exact schema every artifact must carry.
var ExpectedHeader = []string{"Date", "Symbol", "Open", "High", "Low", "Close", "Volume"}

// Scanner audits a directory of artifacts without touching the
// permanent store.
type Scanner struct {
	dir    string
	san    sanitize.Sanitizer
	logger *slog.Logger
}

// NewScanner creates a Scanner over the given artifact directory.
func NewScanner(dir string, san sanitize.Sanitizer, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{dir: dir, san: san, logger: logger}
}

// Scan reads every artifact and reconstructs corpus-wide statistics.
// Defective artifacts are recorded and excluded from statistics; none
// of them aborts the pass.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list artifacts in %s: %w", s.dir, err)
	}
	sort.Strings(files)

	s.logger.Info("scanning artifacts", "dir", s.dir, "files", len(files))

	rep := &Report{
		TotalFiles:    len(files),
		RowsPerSymbol: make(map[string]int),
		DateRanges:    make(map[string]DateRange),
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.scanFile(path, rep)
	}

	return rep, nil
}

func (s *Scanner) scanFile(path string, rep *Report) {
	symbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		rep.ParseErrors = append(rep.ParseErrors, FileError{Symbol: symbol, Err: err.Error()})
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		// No header at all is a schema mismatch, not a read error.
		rep.HeaderMismatches = append(rep.HeaderMismatches, HeaderMismatch{Symbol: symbol})
		return
	}
	if err != nil {
		rep.ParseErrors = append(rep.ParseErrors, FileError{Symbol: symbol, Err: err.Error()})
		return
	}
	if !slices.Equal(header, ExpectedHeader) {
		rep.HeaderMismatches = append(rep.HeaderMismatches, HeaderMismatch{
			Symbol: symbol,
			Header: slices.Clone(header),
		})
		return
	}

	// Read the whole artifact first so a parse error excludes the
	// file from statistics instead of leaving it half-counted.
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rep.ParseErrors = append(rep.ParseErrors, FileError{Symbol: symbol, Err: err.Error()})
			return
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		// Header-only artifacts are suspicious: the collector wrote
		// the file but got no history back.
		rep.RowsPerSymbol[symbol] = 0
		rep.EmptyData = append(rep.EmptyData, symbol)
		return
	}

	var valid int
	var minDate, maxDate time.Time
	for _, row := range rows {
		// Dates are collected defensively and independently of row
		// validity: a quote rejected for a bad price still anchors
		// the file's covered period.
		if len(row) > 0 {
			if d, err := sanitize.ParseTradeDate(row[0]); err == nil {
				if minDate.IsZero() || d.Before(minDate) {
					minDate = d
				}
				if maxDate.IsZero() || d.After(maxDate) {
					maxDate = d
				}
			}
		}

		if _, err := s.san.SanitizeRow(row); err != nil {
			rep.RowsRejected++
			continue
		}
		valid++
	}

	rep.RowsPerSymbol[symbol] = valid
	rep.TotalRows += valid
	rep.ValidFiles++

	if !minDate.IsZero() {
		rep.DateRanges[symbol] = DateRange{Min: minDate, Max: maxDate}
		if rep.MinDate.IsZero() || minDate.Before(rep.MinDate) {
			rep.MinDate = minDate
		}
		if rep.MaxDate.IsZero() || maxDate.After(rep.MaxDate) {
			rep.MaxDate = maxDate
		}
	}
}
