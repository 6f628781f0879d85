// Package report derives the aggregate columns of a simulation run and
// renders the chart set from them.
package report

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"srl_report/internal/model"
	"srl_report/internal/store"
)

var (
	// ErrNoData is returned when the results table has no rows.
	ErrNoData = errors.New("no data to plot")
	// ErrUnknownColumn is returned by Frame.Series for a column it cannot supply.
	ErrUnknownColumn = errors.New("unknown column")
)

// Frame is the loaded results table plus its derived columns. It is read-only
// once built.
type Frame struct {
	store        *store.Store
	srlInCumsum  []float64
	srlOutCumsum []float64
	monthly      []model.MonthlyTotal
}

// Derive computes the cumulative SRL columns and the monthly aggregate.
func Derive(s *store.Store) *Frame {
	in, _ := s.Column(model.ColumnSRLEnergyInKWh)
	out, _ := s.Column(model.ColumnSRLEnergyOutKWh)

	return &Frame{
		store:        s,
		srlInCumsum:  cumsum(in),
		srlOutCumsum: cumsum(out),
		monthly:      monthlyTotals(s.Results()),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.store.Len()
}

// TimeRange returns the first and last timestamp.
func (f *Frame) TimeRange() (model.TimeRange, bool) {
	return f.store.TimeRange()
}

// Results returns the rows in timestamp order.
func (f *Frame) Results() []model.Result {
	return f.store.Results()
}

func (f *Frame) Timestamps() []time.Time {
	return f.store.Timestamps()
}

// Series returns an input or derived column in timestamp order.
func (f *Frame) Series(col model.Column) ([]float64, error) {
	switch col {
	case model.ColumnSRLInCumsum:
		return cloneFloats(f.srlInCumsum), nil
	case model.ColumnSRLOutCumsum:
		return cloneFloats(f.srlOutCumsum), nil
	}
	if v, ok := f.store.Column(col); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownColumn, col)
}

// Monthly returns one total per calendar month present in the data, ascending.
func (f *Frame) Monthly() []model.MonthlyTotal {
	out := make([]model.MonthlyTotal, len(f.monthly))
	copy(out, f.monthly)
	return out
}

// cumsum returns the running total of values. A NaN input stays NaN in the
// output and does not reset or poison the running total.
func cumsum(values []float64) []float64 {
	out := make([]float64, len(values))
	var total float64
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		total += v
		out[i] = total
	}
	return out
}

// monthlyTotals sums SRL energy per calendar month. NaN values count as zero.
func monthlyTotals(results []model.Result) []model.MonthlyTotal {
	var totals []model.MonthlyTotal
	byKey := make(map[string]int)

	for _, r := range results {
		month := model.MonthStart(r.Timestamp)
		key := month.Format("2006-01")
		i, ok := byKey[key]
		if !ok {
			i = len(totals)
			byKey[key] = i
			totals = append(totals, model.MonthlyTotal{Month: month})
		}
		totals[i].SRLEnergyInKWh += zeroNaN(r.SRLEnergyInKWh)
		totals[i].SRLEnergyOutKWh += zeroNaN(r.SRLEnergyOutKWh)
	}

	// Rows are in time order, but with mixed UTC offsets a month key can
	// first appear after a later one.
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Key() < totals[j].Key()
	})
	return totals
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func cloneFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
