package universe

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// LoadExpected reads the symbol universe from a CSV with a Symbol
// column. Any other columns are metadata and ignored.
func LoadExpected(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open expected-symbol file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read expected-symbol header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "Symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("expected-symbol file %s has no Symbol column", path)
	}

	set := make(map[string]struct{})
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// A truncated universe would silently shrink the
		// reconciliation baseline; better to fail loudly.
		if err != nil {
			return nil, fmt.Errorf("read expected-symbol file: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if s := strings.TrimSpace(rec[col]); s != "" {
			set[s] = struct{}{}
		}
	}
	return set, nil
}

// LoadFailed reads the newline-delimited list of tickers whose
// acquisition already failed upstream. A missing file means nothing
// failed, not an error.
func LoadFailed(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open failed-symbol file: %w", err)
	}
	defer f.Close()

	set := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			set[s] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read failed-symbol file: %w", err)
	}
	return set, nil
}
