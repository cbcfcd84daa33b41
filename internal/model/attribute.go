package model

import "fmt"

// Attribute identifies a tracked fundamentals series.
type Attribute string

const (
	AttrRevenue         Attribute = "revenue"
	AttrPreTaxProfit    Attribute = "preTaxProfit"
	AttrOperatingProfit Attribute = "operatingProfit"
)

// attributeInfo binds an attribute to its source row and its record field.
type attributeInfo struct {
	Label    string // shown to the user
	RowTitle string // first-cell text on the fundamentals page
	Series   func(f *Fundamentals) *[]int64
}

var attributes = map[Attribute]attributeInfo{
	AttrRevenue: {
		Label:    "Revenue",
		RowTitle: "Revenue",
		Series:   func(f *Fundamentals) *[]int64 { return &f.Revenue },
	},
	AttrPreTaxProfit: {
		Label:    "Pre Tax Profit",
		RowTitle: "Pre tax Profit",
		Series:   func(f *Fundamentals) *[]int64 { return &f.PreTaxProfit },
	},
	AttrOperatingProfit: {
		Label:    "Operating Profit",
		RowTitle: "Operating Profit / Loss",
		Series:   func(f *Fundamentals) *[]int64 { return &f.OperatingProfit },
	},
}

// Attributes lists every tracked attribute in display order.
var Attributes = []Attribute{AttrRevenue, AttrPreTaxProfit, AttrOperatingProfit}

// Valid reports whether a is a tracked attribute.
func (a Attribute) Valid() bool {
	_, ok := attributes[a]
	return ok
}

// Label returns the human readable name.
func (a Attribute) Label() string {
	if info, ok := attributes[a]; ok {
		return info.Label
	}
	return string(a)
}

// RowTitle returns the exact label of the source table row.
func (a Attribute) RowTitle() string {
	return attributes[a].RowTitle
}

// Of returns the attribute's series from f. Unknown attributes yield nil.
func (a Attribute) Of(f *Fundamentals) []int64 {
	info, ok := attributes[a]
	if !ok {
		return nil
	}
	return *info.Series(f)
}

// Set stores series as the attribute's value on f.
func (a Attribute) Set(f *Fundamentals, series []int64) error {
	info, ok := attributes[a]
	if !ok {
		return fmt.Errorf("unknown attribute %q", a)
	}
	*info.Series(f) = series
	return nil
}

// ParseAttribute accepts either the identifier or the display label.
func ParseAttribute(s string) (Attribute, error) {
	for _, a := range Attributes {
		if s == string(a) || s == attributes[a].Label {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown attribute %q", s)
}
