package store

import (
	"sort"
	"time"

	"srl_report/internal/model"
)

// Store holds simulation results in memory, sorted by timestamp.
type Store struct {
	results []model.Result
}

func New() *Store {
	return &Store{}
}

// AddResults adds results, then sorts by timestamp. Equal timestamps keep
// their insertion order.
func (s *Store) AddResults(results []model.Result) {
	if len(results) == 0 {
		return
	}

	s.results = append(s.results, results...)
	sort.SliceStable(s.results, func(i, j int) bool {
		return s.results[i].Timestamp.Before(s.results[j].Timestamp)
	})
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	return len(s.results)
}

// Results returns a copy of all results in timestamp order.
func (s *Store) Results() []model.Result {
	out := make([]model.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Timestamps returns the timestamp column.
func (s *Store) Timestamps() []time.Time {
	out := make([]time.Time, len(s.results))
	for i, r := range s.results {
		out[i] = r.Timestamp
	}
	return out
}

// Column returns the values of a numeric input column in timestamp order.
// ok is false if the column is not a numeric input column.
func (s *Store) Column(c model.Column) ([]float64, bool) {
	if _, ok := (model.Result{}).Value(c); !ok {
		return nil, false
	}

	out := make([]float64, len(s.results))
	for i, r := range s.results {
		out[i], _ = r.Value(c)
	}
	return out, true
}

// TimeRange returns the time range covered by the results.
func (s *Store) TimeRange() (model.TimeRange, bool) {
	if len(s.results) == 0 {
		return model.TimeRange{}, false
	}

	return model.TimeRange{
		Start: s.results[0].Timestamp,
		End:   s.results[len(s.results)-1].Timestamp,
	}, true
}
