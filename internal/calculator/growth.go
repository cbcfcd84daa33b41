package calculator

import "errors"

// ErrEmptySeries is returned when a calculation needs at least one point.
var ErrEmptySeries = errors.New("empty series")

// StartVsEndDiff returns the percentage change from the first to the last
// element: (last/first)*100 - 100. A zero first element follows float
// division rules (±Inf or NaN).
func StartVsEndDiff(series []int64) (float64, error) {
	if len(series) == 0 {
		return 0, ErrEmptySeries
	}
	first, last := float64(series[0]), float64(series[len(series)-1])
	return (last/first)*100 - 100, nil
}

// RunningPercentageDiff returns the period-over-period percentage change,
// one entry per adjacent pair. Series shorter than two yield an empty slice.
func RunningPercentageDiff(series []int64) []float64 {
	if len(series) < 2 {
		return []float64{}
	}
	diffs := make([]float64, 0, len(series)-1)
	for i := 0; i < len(series)-1; i++ {
		diffs = append(diffs, (float64(series[i+1])/float64(series[i]))*100-100)
	}
	return diffs
}

// LastN returns the trailing n values, or false when fewer than n exist.
func LastN(values []float64, n int) ([]float64, bool) {
	if n <= 0 || len(values) < n {
		return nil, false
	}
	return values[len(values)-n:], true
}

// FirstN returns the leading n values, or false when fewer than n exist.
func FirstN(values []float64, n int) ([]float64, bool) {
	if n <= 0 || len(values) < n {
		return nil, false
	}
	return values[:n], true
}

// AllAtLeast reports whether every value is >= threshold. Empty input is
// vacuously true.
func AllAtLeast(values []float64, threshold float64) bool {
	for _, v := range values {
		if v < threshold {
			return false
		}
	}
	return true
}

// Latest returns the most recent value of a chronological series.
func Latest(series []int64) (int64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}
