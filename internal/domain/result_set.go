package domain

import "encoding/json"

// ResultSet is the pass-through payload returned for one search. Payload is
// written to disk as-is; the counters are read from the provider envelope
// when present and are only used for reporting.
type ResultSet struct {
	Payload   json.RawMessage
	TotalHits int
	NumPages  int
	FirstPage int
	LastPage  int
	RowCount  int
}

// PagesFetched returns how many pages contributed to the payload.
func (r *ResultSet) PagesFetched() int {
	if r.LastPage < r.FirstPage || r.FirstPage == 0 {
		return 0
	}
	return r.LastPage - r.FirstPage + 1
}
