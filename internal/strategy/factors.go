package strategy

import (
	"StockScreener/internal/calculator"
)

// predicate decides whether a series survives a filter.
type predicate func(series []int64) (bool, error)

// startVsEnd keeps a series whose overall change is at least threshold percent.
func startVsEnd(threshold float64) predicate {
	return func(series []int64) (bool, error) {
		diff, err := calculator.StartVsEndDiff(series)
		if err != nil {
			return false, err
		}
		return diff >= threshold, nil
	}
}

// trailingWindow keeps a series whose last `window` yearly changes are all
// at least threshold. Too little history drops the series.
func trailingWindow(threshold float64, window int) predicate {
	return func(series []int64) (bool, error) {
		recent, ok := calculator.LastN(calculator.RunningPercentageDiff(series), window)
		if !ok {
			return false, nil
		}
		return calculator.AllAtLeast(recent, threshold), nil
	}
}

// leadingWindow is trailingWindow over the first `window` yearly changes.
func leadingWindow(threshold float64, window int) predicate {
	return func(series []int64) (bool, error) {
		early, ok := calculator.FirstN(calculator.RunningPercentageDiff(series), window)
		if !ok {
			return false, nil
		}
		return calculator.AllAtLeast(early, threshold), nil
	}
}

// allYears keeps a series whose every yearly change is at least threshold.
// Series shorter than minPeriods are dropped; with minPeriods <= 1 a series
// with a single point passes because there is nothing to compare.
func allYears(threshold float64, minPeriods int) predicate {
	return func(series []int64) (bool, error) {
		if len(series) < minPeriods {
			return false, nil
		}
		return calculator.AllAtLeast(calculator.RunningPercentageDiff(series), threshold), nil
	}
}
