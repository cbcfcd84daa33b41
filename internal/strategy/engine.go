package strategy

import (
	"errors"
	"fmt"
	"log"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

var (
	ErrEmptySeries         = calculator.ErrEmptySeries
	ErrUnsupportedStrategy = errors.New("unsupported strategy")
	ErrUnknownAttribute    = errors.New("unknown attribute")
	ErrInvalidWindow       = errors.New("window size must be positive")
)

// Options tunes chain construction.
type Options struct {
	// MinPeriods is the minimum series length for the all-years strategy.
	MinPeriods int
}

// Filter is one validated step of a chain.
type Filter struct {
	Spec model.FilterSpec
	keep predicate
}

// Chain is an ordered list of filters; each narrows the result of the previous one.
type Chain []Filter

// BuildChain validates every spec and returns the chain. Any invalid spec
// fails the whole build.
func BuildChain(specs []model.FilterSpec, opts Options) (Chain, error) {
	chain := make(Chain, 0, len(specs))
	for i, spec := range specs {
		f, err := buildFilter(spec, opts)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i+1, err)
		}
		chain = append(chain, f)
	}
	return chain, nil
}

func buildFilter(spec model.FilterSpec, opts Options) (Filter, error) {
	if !spec.Attribute.Valid() {
		return Filter{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, spec.Attribute)
	}
	if spec.Strategy.Windowed() && spec.Window <= 0 {
		return Filter{}, fmt.Errorf("%w: %s got %d", ErrInvalidWindow, spec.Strategy, spec.Window)
	}

	var keep predicate
	switch spec.Strategy {
	case model.StrategyStartVsEnd:
		keep = startVsEnd(spec.Threshold)
	case model.StrategyTrailingWindow:
		keep = trailingWindow(spec.Threshold, spec.Window)
	case model.StrategyLeadingWindow:
		keep = leadingWindow(spec.Threshold, spec.Window)
	case model.StrategyAllYears:
		keep = allYears(spec.Threshold, opts.MinPeriods)
	default:
		return Filter{}, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, spec.Strategy)
	}
	return Filter{Spec: spec, keep: keep}, nil
}

// Apply folds the chain over snap and returns a new snapshot with the
// surviving companies. Records are never modified.
func (c Chain) Apply(snap *model.Snapshot) (*model.Snapshot, error) {
	current := snap.Companies
	for i, f := range c {
		next := make([]model.Fundamentals, 0, len(current))
		for j := range current {
			ok, err := f.keep(f.Spec.Attribute.Of(&current[j]))
			if err != nil {
				return nil, fmt.Errorf("filter %d (%s) on %s: %w", i+1, f.Spec, current[j].Name, err)
			}
			if ok {
				next = append(next, current[j])
			}
		}
		log.Printf("[INFO] filter %d/%d %s: %d -> %d companies", i+1, len(c), f.Spec, len(current), len(next))
		current = next
	}
	return snap.WithCompanies(current), nil
}
