package recorder

import (
	"time"

	"StockScreener/internal/model"
)

// RunRecord describes one completed screen run.
type RunRecord struct {
	ID        string
	Timestamp time.Time
	Screen    string // empty for interactive runs
	Index     string
	Filters   []model.FilterSpec
	FromCache bool
	Total     int      // companies in the snapshot
	Survivors []string // names left after the chain, in snapshot order
	Failed    []string // links skipped under the skip policy
}

// Recorder persists screen history for later analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	History(limit int) ([]*RunRecord, error)
	Close() error
}
