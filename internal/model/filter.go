package model

import "fmt"

// StrategyKind selects how a filter judges a series.
type StrategyKind string

const (
	StrategyStartVsEnd     StrategyKind = "start_vs_end"
	StrategyTrailingWindow StrategyKind = "trailing_window"
	StrategyLeadingWindow  StrategyKind = "leading_window"
	StrategyAllYears       StrategyKind = "all_years"
)

// Strategies lists the supported kinds in prompt order.
var Strategies = []struct {
	Kind  StrategyKind
	Label string
}{
	{StrategyStartVsEnd, "First Year vs Last Year"},
	{StrategyTrailingWindow, "Increasing for Last X Years"},
	{StrategyLeadingWindow, "Increasing for First X Years"},
	{StrategyAllYears, "Increasing Every Year"},
}

// Label returns the display label, or the raw kind when unknown.
func (k StrategyKind) Label() string {
	for _, s := range Strategies {
		if s.Kind == k {
			return s.Label
		}
	}
	return string(k)
}

// Windowed reports whether the kind needs a window size.
func (k StrategyKind) Windowed() bool {
	return k == StrategyTrailingWindow || k == StrategyLeadingWindow
}

// FilterSpec is one user-chosen screening criterion.
type FilterSpec struct {
	Strategy  StrategyKind `json:"strategy" yaml:"strategy"`
	Attribute Attribute    `json:"attribute" yaml:"attribute"`
	Threshold float64      `json:"threshold" yaml:"threshold"`
	Window    int          `json:"window,omitempty" yaml:"window,omitempty"`
}

func (f FilterSpec) String() string {
	if f.Strategy.Windowed() {
		return fmt.Sprintf("%s(%s >= %g%%, %d years)", f.Strategy.Label(), f.Attribute.Label(), f.Threshold, f.Window)
	}
	return fmt.Sprintf("%s(%s >= %g%%)", f.Strategy.Label(), f.Attribute.Label(), f.Threshold)
}

// Screen is a named index plus the ordered filter chain to apply to it.
type Screen struct {
	Name    string       `json:"name" yaml:"name"`
	Index   string       `json:"index" yaml:"index"`
	Filters []FilterSpec `json:"filters" yaml:"filters"`
}
