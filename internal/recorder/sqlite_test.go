package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func openTestDB(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "screener.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecordAndHistory(t *testing.T) {
	r := openTestDB(t)
	base := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	filters := []model.FilterSpec{
		{Strategy: model.StrategyTrailingWindow, Attribute: model.AttrRevenue, Threshold: 5, Window: 3},
	}

	require.NoError(t, r.RecordRun(&RunRecord{
		ID: "run-1", Timestamp: base, Screen: "growers", Index: "FTSE_100",
		Filters: filters, Total: 100, Survivors: []string{"AAA", "BBB"},
	}))
	require.NoError(t, r.RecordRun(&RunRecord{
		ID: "run-2", Timestamp: base.Add(24 * time.Hour), Index: "FTSE_250",
		FromCache: true, Total: 250, Survivors: []string{}, Failed: []string{"https://example/x"},
	}))

	runs, err := r.History(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID, "newest first")
	assert.True(t, runs[0].FromCache)
	assert.Empty(t, runs[0].Survivors)

	assert.Equal(t, "growers", runs[1].Screen)
	assert.Equal(t, filters, runs[1].Filters)
	assert.Equal(t, []string{"AAA", "BBB"}, runs[1].Survivors)
	assert.Equal(t, 100, runs[1].Total)
	assert.True(t, runs[1].Timestamp.Equal(base))
}

func TestSQLiteRecorder_HistoryLimit(t *testing.T) {
	r := openTestDB(t)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.RecordRun(&RunRecord{
			ID: id, Timestamp: time.Unix(int64(1000+i), 0), Index: "FTSE_100",
		}))
	}
	runs, err := r.History(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestSQLiteRecorder_DuplicateIDRollsBack(t *testing.T) {
	r := openTestDB(t)
	run := &RunRecord{ID: "dup", Timestamp: time.Now(), Index: "FTSE_100", Survivors: []string{"AAA"}}
	require.NoError(t, r.RecordRun(run))
	assert.Error(t, r.RecordRun(run))

	runs, err := r.History(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"AAA"}, runs[0].Survivors)
}

func TestSQLiteRecorder_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(&RunRecord{ID: "x", Timestamp: time.Now(), Index: "AIM_100"}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	runs, err := r.History(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "AIM_100", runs[0].Index)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&RunRecord{ID: "x"}))
	runs, err := r.History(5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, r.Close())
}
