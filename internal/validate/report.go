package validate

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rickgao/market-insight/internal/model"
)

// DateRange is the covered period of one symbol's history.
type DateRange struct {
	Min time.Time
	Max time.Time
}

// HeaderMismatch records an artifact whose schema diverges from
// ExpectedHeader. A nil Header means the file had no header at all.
type HeaderMismatch struct {
	Symbol string
	Header []string
}

// FileError records an artifact that could not be read.
type FileError struct {
	Symbol string
	Err    string
}

// SymbolRows is one entry of the row-count ranking.
type SymbolRows struct {
	Symbol string
	Rows   int
}

// Reconciliation classifies the symbol universe into collected,
// known-failed and unexplained-missing.
type Reconciliation struct {
	ExpectedCount  int
	CollectedCount int
	FailedCount    int
	Missing        []string // expected - collected - failed, sorted
	FromStore      bool     // collected set came from the permanent store
}

// Report is the outcome of one validation pass.
type Report struct {
	TotalFiles   int
	ValidFiles   int
	TotalRows    int // rows that would survive sanitization
	RowsRejected int // rows a (re-)import would drop

	MinDate time.Time
	MaxDate time.Time

	RowsPerSymbol map[string]int
	DateRanges    map[string]DateRange

	EmptyData        []string // header-only artifacts
	HeaderMismatches []HeaderMismatch
	ParseErrors      []FileError

	Reconciliation *Reconciliation
}

// ArtifactSymbols is the set of symbols with a well-formed artifact,
// header-only files included.
func (r *Report) ArtifactSymbols() map[string]struct{} {
	set := make(map[string]struct{}, len(r.RowsPerSymbol))
	for sym := range r.RowsPerSymbol {
		set[sym] = struct{}{}
	}
	return set
}

// Reconcile computes missing = expected - collected - failed. Anything
// left in missing is an unexplained gap: not collected, and not known
// to have failed.
func (r *Report) Reconcile(expected, failed, collected map[string]struct{}, fromStore bool) {
	rec := &Reconciliation{
		ExpectedCount:  len(expected),
		CollectedCount: len(collected),
		FailedCount:    len(failed),
		FromStore:      fromStore,
	}
	for sym := range expected {
		if _, ok := collected[sym]; ok {
			continue
		}
		if _, ok := failed[sym]; ok {
			continue
		}
		rec.Missing = append(rec.Missing, sym)
	}
	sort.Strings(rec.Missing)
	r.Reconciliation = rec
}

// TopSymbols ranks symbols by row count, descending, ties broken by
// ticker.
func (r *Report) TopSymbols(n int) []SymbolRows {
	ranked := make([]SymbolRows, 0, len(r.RowsPerSymbol))
	for sym, rows := range r.RowsPerSymbol {
		ranked = append(ranked, SymbolRows{Symbol: sym, Rows: rows})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rows != ranked[j].Rows {
			return ranked[i].Rows > ranked[j].Rows
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Defects is the total number of artifact-level problems found.
func (r *Report) Defects() int {
	return len(r.EmptyData) + len(r.HeaderMismatches) + len(r.ParseErrors)
}

// WriteText renders the human-readable report. The layout is a
// convenience, not a compatibility surface.
func (r *Report) WriteText(w io.Writer, topN int) error {
	p := func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	p("DATA VALIDATION REPORT")
	p("")
	p("General")
	p("  artifacts scanned : %d", r.TotalFiles)
	p("  valid artifacts   : %d", r.ValidFiles)
	p("  data rows         : %d", r.TotalRows)
	p("  rejected rows     : %d", r.RowsRejected)

	if !r.MinDate.IsZero() {
		years := r.MaxDate.Sub(r.MinDate).Hours() / 24 / 365.25
		p("")
		p("Covered period")
		p("  earliest date : %s", model.FormatTradeDate(r.MinDate))
		p("  latest date   : %s", model.FormatTradeDate(r.MaxDate))
		p("  span          : %.1f years", years)
	}

	if len(r.RowsPerSymbol) > 0 {
		var sum, maxRows, minRows int
		var maxSym, minSym string
		minRows = -1
		for sym, rows := range r.RowsPerSymbol {
			sum += rows
			if rows > maxRows || maxSym == "" {
				maxRows, maxSym = rows, sym
			}
			if minRows < 0 || rows < minRows {
				minRows, minSym = rows, sym
			}
		}
		p("")
		p("Rows per artifact")
		p("  average : %.0f", float64(sum)/float64(len(r.RowsPerSymbol)))
		p("  maximum : %d (%s)", maxRows, maxSym)
		p("  minimum : %d (%s)", minRows, minSym)
	}

	if rec := r.Reconciliation; rec != nil {
		source := "artifacts"
		if rec.FromStore {
			source = "store"
		}
		p("")
		p("Symbol reconciliation (collected set from %s)", source)
		p("  expected  : %d", rec.ExpectedCount)
		p("  collected : %d", rec.CollectedCount)
		p("  failed    : %d", rec.FailedCount)
		p("  missing   : %d", len(rec.Missing))
		if n := len(rec.Missing); n > 0 && n <= 20 {
			for _, sym := range rec.Missing {
				p("    - %s", sym)
			}
		}
	}

	p("")
	p("Problems")
	p("  empty artifacts (header only) : %d", len(r.EmptyData))
	for _, sym := range firstN(r.EmptyData, 10) {
		p("    - %s", sym)
	}
	p("  header mismatches             : %d", len(r.HeaderMismatches))
	for _, hm := range r.HeaderMismatches[:min(len(r.HeaderMismatches), 5)] {
		p("    - %s: %v", hm.Symbol, hm.Header)
	}
	p("  unreadable artifacts          : %d", len(r.ParseErrors))
	for _, fe := range r.ParseErrors[:min(len(r.ParseErrors), 5)] {
		p("    - %s: %s", fe.Symbol, fe.Err)
	}

	if top := r.TopSymbols(topN); len(top) > 0 {
		p("")
		p("Top %d symbols by row count", len(top))
		for _, sr := range top {
			if dr, ok := r.DateRanges[sr.Symbol]; ok {
				p("  %-8s %8d rows (%s - %s)", sr.Symbol, sr.Rows,
					model.FormatTradeDate(dr.Min), model.FormatTradeDate(dr.Max))
			} else {
				p("  %-8s %8d rows", sr.Symbol, sr.Rows)
			}
		}
	}

	p("")
	if r.Defects() == 0 {
		p("RESULT: no artifact-level problems detected")
	} else {
		p("RESULT: %d artifact-level problem(s) detected", r.Defects())
	}

	return nil
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
