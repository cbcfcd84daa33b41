package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

type memStore struct {
	mu    sync.Mutex
	snaps map[string]*model.Snapshot
	puts  int
}

func (m *memStore) Get(indexID string) (*model.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[indexID]
	return s, ok, nil
}

func (m *memStore) Put(indexID string, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.snaps == nil {
		m.snaps = map[string]*model.Snapshot{}
	}
	if _, ok := m.snaps[indexID]; !ok {
		m.snaps[indexID] = snap
	}
	return nil
}

func indexFetcher(names ...string) *MockFetcher {
	pages := map[string]string{testListURL: constituentsPage(names...)}
	for i, n := range names {
		pages[fundamentalsURL(n)] = companyPage("150", "120", string(rune('1'+i))+"00")
	}
	return &MockFetcher{Pages: pages}
}

func newTestCollector(f Fetcher, store Store, policy FailurePolicy) *Collector {
	return NewCollector(f, store, Options{
		Indices:     testIndices,
		Concurrency: 2,
		Policy:      policy,
	})
}

func TestFetchFundamentals_AssemblesInLinkOrder(t *testing.T) {
	f := indexFetcher("AAA", "BBB", "CCC", "DDD")
	f.Latency = 5 * time.Millisecond
	store := &memStore{}

	snap, report, err := newTestCollector(f, store, PolicyAbort).FetchFundamentals(context.Background(), "FTSE_100")
	require.NoError(t, err)

	assert.False(t, report.FromCache)
	assert.Equal(t, 4, report.Links)
	assert.Equal(t, []string{"AAA", "BBB", "CCC", "DDD"}, snap.Names())
	assert.Equal(t, "FTSE_100", snap.Index)
	assert.Equal(t, []int64{100, 120, 150}, snap.Companies[0].Revenue)
	assert.Equal(t, fundamentalsURL("BBB"), snap.Companies[1].Link)
	assert.Equal(t, 1, store.puts)
}

func TestFetchFundamentals_BoundedConcurrency(t *testing.T) {
	f := indexFetcher("A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8")
	f.Latency = 10 * time.Millisecond

	c := newTestCollector(f, nil, PolicyAbort)
	_, _, err := c.FetchFundamentals(context.Background(), "FTSE_100")
	require.NoError(t, err)

	assert.LessOrEqual(t, f.PeakInFlight(), 2)
	assert.Len(t, f.Calls(), 9)
}

func TestFetchFundamentals_RequestDelay(t *testing.T) {
	f := indexFetcher("A1", "A2", "A3", "A4")
	c := NewCollector(f, nil, Options{Indices: testIndices, Concurrency: 2, RequestDelay: 20 * time.Millisecond})

	start := time.Now()
	_, _, err := c.FetchFundamentals(context.Background(), "FTSE_100")
	require.NoError(t, err)

	// two rounds of two slots, each waiting before its request
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestFetchFundamentals_CacheShortCircuit(t *testing.T) {
	cached := &model.Snapshot{Index: "FTSE_100", Companies: []model.Fundamentals{{Name: "CACHED"}}}
	store := &memStore{snaps: map[string]*model.Snapshot{"FTSE_100": cached}}
	f := indexFetcher("AAA")

	snap, report, err := newTestCollector(f, store, PolicyAbort).FetchFundamentals(context.Background(), "FTSE_100")
	require.NoError(t, err)

	assert.True(t, report.FromCache)
	assert.Same(t, cached, snap)
	assert.Empty(t, f.Calls())
}

func TestFetchFundamentals_UnknownIndex(t *testing.T) {
	_, _, err := newTestCollector(indexFetcher("AAA"), &memStore{}, PolicyAbort).FetchFundamentals(context.Background(), "NIKKEI")
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestFetchFundamentals_AbortOnSingleFailure(t *testing.T) {
	f := indexFetcher("AAA", "BBB", "CCC")
	f.Errors = map[string]error{fundamentalsURL("BBB"): errors.New("connection reset")}
	store := &memStore{}

	snap, _, err := newTestCollector(f, store, PolicyAbort).FetchFundamentals(context.Background(), "FTSE_100")
	require.Error(t, err)
	assert.Nil(t, snap)

	var failure *FetchFailedError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, fundamentalsURL("BBB"), failure.Link)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, 0, store.puts, "a failed fetch must not be cached")
}

func TestFetchFundamentals_AbortOnMalformedPage(t *testing.T) {
	f := indexFetcher("AAA", "BBB")
	f.Pages[fundamentalsURL("AAA")] = companyPage("150", "oops", "100")

	_, _, err := newTestCollector(f, nil, PolicyAbort).FetchFundamentals(context.Background(), "FTSE_100")
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrMalformedAttributeCell)
}

func TestFetchFundamentals_SkipPolicy(t *testing.T) {
	f := indexFetcher("AAA", "BBB", "CCC")
	f.Errors = map[string]error{fundamentalsURL("BBB"): errors.New("timeout")}
	store := &memStore{}

	snap, report, err := newTestCollector(f, store, PolicySkip).FetchFundamentals(context.Background(), "FTSE_100")
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "CCC"}, snap.Names())
	require.Len(t, report.Failed, 1)
	assert.Equal(t, fundamentalsURL("BBB"), report.Failed[0].Link)
	assert.Equal(t, 0, store.puts, "partial snapshots are not cached")
}

func TestFetchFundamentals_SourceUnavailable(t *testing.T) {
	f := &MockFetcher{}
	_, _, err := newTestCollector(f, nil, PolicyAbort).FetchFundamentals(context.Background(), "FTSE_100")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetchFundamentals_DuplicateNamesKeepFirst(t *testing.T) {
	f := indexFetcher("AAA", "AAA", "BBB")

	snap, _, err := newTestCollector(f, nil, PolicyAbort).FetchFundamentals(context.Background(), "FTSE_100")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, snap.Names())
}

func TestFetchFundamentals_ContextCancelled(t *testing.T) {
	f := indexFetcher("AAA", "BBB")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestCollector(f, nil, PolicySkip).FetchFundamentals(ctx, "FTSE_100")
	assert.Error(t, err)
}
