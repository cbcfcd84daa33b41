package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIndex means the index id is not configured.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrSourceUnavailable means the constituents page could not be fetched or parsed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrFetchFailed is matched by every *FetchFailedError.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrMalformedAttributeCell means a table cell is not a signed integer after normalization.
	ErrMalformedAttributeCell = errors.New("malformed attribute cell")
)

// FetchFailedError reports a single company page that could not be fetched or parsed.
type FetchFailedError struct {
	Link string
	Err  error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch failed for %s: %v", e.Link, e.Err)
}

func (e *FetchFailedError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}
