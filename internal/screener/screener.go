package screener

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"StockScreener/internal/collector"
	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/strategy"
)

// Source produces the fundamentals snapshot of an index.
type Source interface {
	FetchFundamentals(ctx context.Context, indexID string) (*model.Snapshot, *collector.FetchReport, error)
}

// Result is the outcome of one screen run.
type Result struct {
	RunID    string
	Screen   model.Screen
	Snapshot *model.Snapshot // everything fetched
	Screened *model.Snapshot // survivors of the filter chain
	Report   *collector.FetchReport
}

// Runner fetches an index, applies a filter chain and records the run.
type Runner struct {
	Source   Source
	Recorder recorder.Recorder
	Options  strategy.Options
	Now      func() time.Time
}

func NewRunner(src Source, rec recorder.Recorder, opts strategy.Options) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{Source: src, Recorder: rec, Options: opts, Now: time.Now}
}

// Run screens screen.Index with screen.Filters. The chain is validated before
// anything is fetched. A failure to record the run is logged, not returned.
func (r *Runner) Run(ctx context.Context, screen model.Screen) (*Result, error) {
	chain, err := strategy.BuildChain(screen.Filters, r.Options)
	if err != nil {
		return nil, err
	}

	snap, report, err := r.Source.FetchFundamentals(ctx, screen.Index)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", screen.Index, err)
	}
	if report == nil {
		report = &collector.FetchReport{}
	}

	screened, err := chain.Apply(snap)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", screen.Index, err)
	}

	res := &Result{
		RunID:    uuid.NewString(),
		Screen:   screen,
		Snapshot: snap,
		Screened: screened,
		Report:   report,
	}
	log.Printf("[INFO] run %s: %d of %d companies passed %d filters",
		res.RunID, len(screened.Companies), len(snap.Companies), len(chain))

	if err := r.Recorder.RecordRun(res.record(r.Now())); err != nil {
		log.Printf("[ERROR] record run %s: %v", res.RunID, err)
	}
	return res, nil
}

func (res *Result) record(at time.Time) *recorder.RunRecord {
	failed := make([]string, 0, len(res.Report.Failed))
	for _, f := range res.Report.Failed {
		failed = append(failed, f.Link)
	}
	return &recorder.RunRecord{
		ID:        res.RunID,
		Timestamp: at,
		Screen:    res.Screen.Name,
		Index:     res.Screen.Index,
		Filters:   res.Screen.Filters,
		FromCache: res.Report.FromCache,
		Total:     len(res.Snapshot.Companies),
		Survivors: res.Screened.Names(),
		Failed:    failed,
	}
}
