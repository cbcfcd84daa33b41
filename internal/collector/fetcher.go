package collector

import "context"

// Fetcher retrieves the raw markup of a page. Transport errors and non-2xx
// responses are both reported as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Name() string
}
