package model

import "time"

// Fundamentals holds the reported history of one company.
// Every series is chronological ascending (oldest first).
type Fundamentals struct {
	Name            string  `json:"name"`
	Link            string  `json:"link"`
	Revenue         []int64 `json:"revenue"`
	PreTaxProfit    []int64 `json:"preTaxProfit"`
	OperatingProfit []int64 `json:"operatingProfit"`
}

// Snapshot is the full fundamentals set for one index as of one fetch.
type Snapshot struct {
	Index     string         `json:"index"`
	FetchedAt time.Time      `json:"fetchedAt"`
	Companies []Fundamentals `json:"companies"`
}

// Names returns company names in snapshot order.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.Companies))
	for i, c := range s.Companies {
		names[i] = c.Name
	}
	return names
}

// WithCompanies returns a shallow copy of s holding the given companies.
func (s *Snapshot) WithCompanies(companies []Fundamentals) *Snapshot {
	return &Snapshot{Index: s.Index, FetchedAt: s.FetchedAt, Companies: companies}
}
