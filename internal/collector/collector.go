package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"StockScreener/internal/model"
)

// FailurePolicy decides what a single failed company page does to a fetch.
type FailurePolicy string

const (
	// PolicyAbort fails the whole snapshot on the first failed page.
	PolicyAbort FailurePolicy = "abort"
	// PolicySkip drops failed companies and reports them in FetchReport.
	PolicySkip FailurePolicy = "skip"
)

// Store is the per-day snapshot cache used by the Collector.
type Store interface {
	Get(indexID string) (*model.Snapshot, bool, error)
	Put(indexID string, snap *model.Snapshot) error
}

// Options tunes a Collector.
type Options struct {
	Indices      map[string]string // index id -> constituents page
	Concurrency  int
	RequestDelay time.Duration
	Policy       FailurePolicy
}

// FetchReport describes how a snapshot was produced.
type FetchReport struct {
	FromCache bool
	Links     int
	Failed    []*FetchFailedError
}

// Collector orchestrates link resolution, page fetching, extraction and caching.
type Collector struct {
	Fetcher Fetcher
	Cache   Store
	Options Options
	Now     func() time.Time
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, cache Store, opts Options) *Collector {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAbort
	}
	return &Collector{Fetcher: fetcher, Cache: cache, Options: opts, Now: time.Now}
}

// pageResult is the outcome of one company fetch, stored by link position.
type pageResult struct {
	record *model.Fundamentals
	err    *FetchFailedError
}

// FetchFundamentals returns the fundamentals snapshot of indexID, serving
// today's cached copy when there is one.
func (c *Collector) FetchFundamentals(ctx context.Context, indexID string) (*model.Snapshot, *FetchReport, error) {
	report := &FetchReport{}
	if _, ok := c.Options.Indices[indexID]; !ok {
		return nil, report, fmt.Errorf("%w: %q", ErrUnknownIndex, indexID)
	}

	if c.Cache != nil {
		snap, ok, err := c.Cache.Get(indexID)
		if err != nil {
			return nil, report, err
		}
		if ok {
			log.Printf("[INFO] %s: using cached snapshot (%d companies)", indexID, len(snap.Companies))
			report.FromCache = true
			return snap, report, nil
		}
	}

	links, err := ResolveLinks(ctx, c.Fetcher, c.Options.Indices, indexID)
	if err != nil {
		return nil, report, err
	}
	report.Links = len(links)
	log.Printf("[INFO] %s: fetching %d fundamentals pages via %s (concurrency=%d, delay=%v)",
		indexID, len(links), c.Fetcher.Name(), c.Options.Concurrency, c.Options.RequestDelay)

	results, err := c.fetchAll(ctx, links)
	if err != nil {
		return nil, report, err
	}

	snap := &model.Snapshot{Index: indexID, FetchedAt: c.Now()}
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if r.err != nil {
			report.Failed = append(report.Failed, r.err)
			continue
		}
		if seen[r.record.Name] {
			log.Printf("[WARN] %s: duplicate company %q at %s, keeping first", indexID, r.record.Name, r.record.Link)
			continue
		}
		seen[r.record.Name] = true
		snap.Companies = append(snap.Companies, *r.record)
	}

	if len(report.Failed) > 0 {
		log.Printf("[WARN] %s: %d of %d pages failed, snapshot is partial and not cached",
			indexID, len(report.Failed), len(links))
		return snap, report, nil
	}

	if c.Cache != nil {
		if err := c.Cache.Put(indexID, snap); err != nil {
			return nil, report, fmt.Errorf("cache snapshot: %w", err)
		}
	}
	log.Printf("[INFO] %s: fetched %d companies", indexID, len(snap.Companies))
	return snap, report, nil
}

// fetchAll fetches every link with at most Concurrency requests in flight.
// Results keep link order regardless of completion order.
func (c *Collector) fetchAll(ctx context.Context, links []string) ([]pageResult, error) {
	results := make([]pageResult, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Options.Concurrency)

	for i, link := range links {
		g.Go(func() error {
			if err := wait(gctx, c.Options.RequestDelay); err != nil {
				return err
			}
			rec, err := c.fetchOne(gctx, link)
			if err == nil {
				results[i].record = rec
				return nil
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			failure := &FetchFailedError{Link: link, Err: err}
			if c.Options.Policy == PolicyAbort {
				return failure
			}
			log.Printf("[WARN] skipping company: %v", failure)
			results[i].err = failure
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var failure *FetchFailedError
		if errors.As(err, &failure) {
			return nil, failure
		}
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}
	return results, nil
}

func (c *Collector) fetchOne(ctx context.Context, link string) (*model.Fundamentals, error) {
	name, err := NameFromLink(link)
	if err != nil {
		return nil, err
	}
	body, err := c.Fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	return ParseFundamentals(name, link, body)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
