package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srl_report/internal/model"
	"srl_report/internal/store"
)

func frameOf(results ...model.Result) *Frame {
	s := store.New()
	s.AddResults(results)
	return Derive(s)
}

func TestDerive_TwoMonthExample(t *testing.T) {
	f := frameOf(
		model.Result{Timestamp: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), SRLEnergyInKWh: 2.0, SRLEnergyOutKWh: 1.0},
		model.Result{Timestamp: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), SRLEnergyInKWh: 3.0, SRLEnergyOutKWh: 1.5},
	)

	monthly := f.Monthly()
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Key())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), monthly[0].Month)
	assert.InDelta(t, 2.0, monthly[0].SRLEnergyInKWh, 1e-12)
	assert.InDelta(t, 1.0, monthly[0].SRLEnergyOutKWh, 1e-12)
	assert.Equal(t, "2024-02", monthly[1].Key())
	assert.InDelta(t, 3.0, monthly[1].SRLEnergyInKWh, 1e-12)
	assert.InDelta(t, 1.5, monthly[1].SRLEnergyOutKWh, 1e-12)

	in, err := f.Series(model.ColumnSRLInCumsum)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 5.0}, in)

	out, err := f.Series(model.ColumnSRLOutCumsum)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.5}, out)
}

func TestDerive_CumsumIsPrefixSum(t *testing.T) {
	start := time.Date(2024, 3, 30, 22, 0, 0, 0, time.UTC)
	values := []float64{0.5, 0, 1.25, 3, 0, 0.75, 2, 0.1}

	// Insert out of order: cumulative sums follow timestamps, not file order.
	results := make([]model.Result, len(values))
	for i, v := range values {
		j := len(values) - 1 - i
		results[j] = model.Result{
			Timestamp:       start.Add(time.Duration(i) * time.Hour),
			SRLEnergyInKWh:  v,
			SRLEnergyOutKWh: 2 * v,
		}
	}
	f := frameOf(results...)

	in, err := f.Series(model.ColumnSRLInCumsum)
	require.NoError(t, err)
	out, err := f.Series(model.ColumnSRLOutCumsum)
	require.NoError(t, err)
	require.Len(t, in, len(values))

	var want float64
	for i, v := range values {
		want += v
		assert.InDelta(t, want, in[i], 1e-9, "row %d", i)
		assert.InDelta(t, 2*want, out[i], 1e-9, "row %d", i)
		if i > 0 {
			assert.GreaterOrEqual(t, in[i], in[i-1])
		}
	}
}

func TestDerive_MonthlyGrouping(t *testing.T) {
	var results []model.Result
	wantIn := map[string]float64{}
	wantOut := map[string]float64{}

	// 100 rows every 18 hours, Dec 2023 to Mar 2024 across a year boundary.
	start := time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		ts := start.Add(time.Duration(i*18) * time.Hour)
		in, out := float64(i%7)*0.25, float64(i%3)*0.5
		results = append(results, model.Result{Timestamp: ts, SRLEnergyInKWh: in, SRLEnergyOutKWh: out})
		key := ts.Format("2006-01")
		wantIn[key] += in
		wantOut[key] += out
	}

	monthly := frameOf(results...).Monthly()

	require.Len(t, monthly, len(wantIn))
	for i, m := range monthly {
		if i > 0 {
			assert.True(t, monthly[i-1].Month.Before(m.Month), "months ascending")
		}
		assert.InDelta(t, wantIn[m.Key()], m.SRLEnergyInKWh, 1e-9, m.Key())
		assert.InDelta(t, wantOut[m.Key()], m.SRLEnergyOutKWh, 1e-9, m.Key())
	}
	assert.Equal(t, "2023-12", monthly[0].Key())
	assert.Equal(t, "2024-01", monthly[1].Key())
}

func TestDerive_MissingValues(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := frameOf(
		model.Result{Timestamp: t0, SRLEnergyInKWh: 1, SRLEnergyOutKWh: 1},
		model.Result{Timestamp: t0.Add(time.Minute), SRLEnergyInKWh: math.NaN(), SRLEnergyOutKWh: 1},
		model.Result{Timestamp: t0.Add(2 * time.Minute), SRLEnergyInKWh: 2, SRLEnergyOutKWh: 1},
	)

	in, err := f.Series(model.ColumnSRLInCumsum)
	require.NoError(t, err)
	require.Len(t, in, 3)
	assert.InDelta(t, 1.0, in[0], 1e-12)
	assert.True(t, math.IsNaN(in[1]))
	assert.InDelta(t, 3.0, in[2], 1e-12)

	monthly := f.Monthly()
	require.Len(t, monthly, 1)
	assert.InDelta(t, 3.0, monthly[0].SRLEnergyInKWh, 1e-12)
	assert.InDelta(t, 3.0, monthly[0].SRLEnergyOutKWh, 1e-12)
}

func TestDerive_MixedOffsets(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	// 2024-02-01 00:30 CET is 2024-01-31 23:30 UTC, earlier than the UTC row.
	f := frameOf(
		model.Result{Timestamp: time.Date(2024, 2, 1, 0, 30, 0, 0, cet), SRLEnergyInKWh: 1},
		model.Result{Timestamp: time.Date(2024, 1, 31, 23, 45, 0, 0, time.UTC), SRLEnergyInKWh: 2},
	)

	monthly := f.Monthly()
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Key())
	assert.InDelta(t, 2.0, monthly[0].SRLEnergyInKWh, 1e-12)
	assert.Equal(t, "2024-02", monthly[1].Key())
	assert.InDelta(t, 1.0, monthly[1].SRLEnergyInKWh, 1e-12)
}

func TestDerive_Empty(t *testing.T) {
	f := Derive(store.New())

	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Monthly())
	in, err := f.Series(model.ColumnSRLInCumsum)
	require.NoError(t, err)
	assert.Empty(t, in)
	_, ok := f.TimeRange()
	assert.False(t, ok)
}

func TestFrame_Series(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := frameOf(model.Result{Timestamp: t0, SoCKWh: 600, GridNetKW: -3})

	soc, err := f.Series(model.ColumnSoCKWh)
	require.NoError(t, err)
	assert.Equal(t, []float64{600}, soc)

	_, err = f.Series("voltage")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.Contains(t, err.Error(), "voltage")

	_, err = f.Series(model.ColumnTimestamp)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	assert.Equal(t, []time.Time{t0}, f.Timestamps())
}

func TestFrame_ReadOnly(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := frameOf(model.Result{Timestamp: t0, SRLEnergyInKWh: 1})

	in, _ := f.Series(model.ColumnSRLInCumsum)
	in[0] = 99
	monthly := f.Monthly()
	monthly[0].SRLEnergyInKWh = 99

	again, _ := f.Series(model.ColumnSRLInCumsum)
	assert.Equal(t, []float64{1}, again)
	assert.InDelta(t, 1.0, f.Monthly()[0].SRLEnergyInKWh, 1e-12)
}
