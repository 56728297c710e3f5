package transfer

import "encoding/json"

// Report summarises one import call.
type Report struct {
	Deleted map[string]int64 `json:"deleted"`
	Added   map[string]int   `json:"added"`
	Errors  []string         `json:"errors"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		Deleted: map[string]int64{},
		Added:   map[string]int{},
		Errors:  []string{},
	}
}

// RecordDeleted stores the outcome of a clear step. A failed step counts zero rows.
func (r *Report) RecordDeleted(t DataType, count int64, err error) {
	if err != nil {
		r.Deleted[string(t)] = 0
		r.Errors = append(r.Errors, err.Error())
		return
	}
	r.Deleted[string(t)] = count
}

// RecordAdded stores the outcome of an import step. A failed step counts zero rows.
func (r *Report) RecordAdded(t DataType, ids IDMap, err error) {
	if err != nil {
		r.Added[string(t)] = 0
		r.Errors = append(r.Errors, err.Error())
		return
	}
	r.Added[string(t)] = len(ids)
}

// TotalAdded sums the added counts
func (r *Report) TotalAdded() int {
	total := 0
	for _, n := range r.Added {
		total += n
	}
	return total
}

// TotalDeleted sums the deleted counts
func (r *Report) TotalDeleted() int64 {
	var total int64
	for _, n := range r.Deleted {
		total += n
	}
	return total
}

// MarshalJSON keeps the errors list a JSON array even when nil.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	if r.Errors == nil {
		r.Errors = []string{}
	}
	if r.Deleted == nil {
		r.Deleted = map[string]int64{}
	}
	if r.Added == nil {
		r.Added = map[string]int{}
	}
	return json.Marshal(plain(r))
}
