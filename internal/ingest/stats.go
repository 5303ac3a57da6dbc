package ingest

import (
	"sync/atomic"
	"time"
)

// counters are the run-wide aggregates. Workers update them
// concurrently; atomics make the final tallies immune to lost updates.
type counters struct {
	filesImported atomic.Int64
	filesSkipped  atomic.Int64
	filesFailed   atomic.Int64
	rowsImported  atomic.Int64
	rowsRejected  atomic.Int64
}

func (c *counters) snapshot(total int, elapsed time.Duration) Stats {
	return Stats{
		FilesTotal:    int64(total),
		FilesImported: c.filesImported.Load(),
		FilesSkipped:  c.filesSkipped.Load(),
		FilesFailed:   c.filesFailed.Load(),
		RowsImported:  c.rowsImported.Load(),
		RowsRejected:  c.rowsRejected.Load(),
		Elapsed:       elapsed,
	}
}

// Stats is the final summary of one ingestion run.
type Stats struct {
	FilesTotal    int64
	FilesImported int64
	FilesSkipped  int64 // No valid rows after sanitization
	FilesFailed   int64 // Unreadable, or storage failure after retries
	RowsImported  int64
	RowsRejected  int64
	Elapsed       time.Duration
}

// RowsPerSecond is the row throughput of the run.
func (s Stats) RowsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.RowsImported) / s.Elapsed.Seconds()
}
