package collector

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockFetcher serves fixed pages for development and testing.
type MockFetcher struct {
	Pages   map[string]string
	Errors  map[string]error
	Latency time.Duration

	mu       sync.Mutex
	calls    []string
	inFlight int
	peak     int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	if err, ok := m.Errors[url]; ok {
		return "", err
	}
	body, ok := m.Pages[url]
	if !ok {
		return "", fmt.Errorf("get %s: status 404", url)
	}
	return body, nil
}

// Calls returns the URLs requested so far, in request order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// PeakInFlight returns the highest number of simultaneous Fetch calls seen.
func (m *MockFetcher) PeakInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}
