package report

import (
	"fmt"
	"io"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"srl_report/internal/model"
)

// tickHours is the simulator's fixed step (1 minute) in hours.
const tickHours = 1.0 / 60.0

// Summarize computes run totals. Missing values are ignored.
func Summarize(f *Frame) model.Summary {
	results := f.Results()
	s := model.Summary{
		Ticks:     len(results),
		MinSoCKWh: math.NaN(),
		MaxSoCKWh: math.NaN(),
	}
	s.Range, _ = f.TimeRange()

	column := func(pick func(model.Result) float64) []float64 {
		return finite(lo.Map(results, func(r model.Result, _ int) float64 { return pick(r) }))
	}

	s.SRLOutKWh = floats.Sum(column(func(r model.Result) float64 { return r.SRLEnergyOutKWh }))
	s.SRLInKWh = floats.Sum(column(func(r model.Result) float64 { return r.SRLEnergyInKWh }))
	s.PSOutKWh = floats.Sum(column(func(r model.Result) float64 { return r.BatteryOutKW })) * tickHours
	s.PSInKWh = floats.Sum(column(func(r model.Result) float64 { return r.BatteryInKW })) * tickHours
	s.SRLRevenuePosCHF = floats.Sum(column(func(r model.Result) float64 { return r.SRLRevenuePosCHF }))
	s.SRLRevenueNegCHF = floats.Sum(column(func(r model.Result) float64 { return r.SRLRevenueNegCHF }))

	if soc := column(func(r model.Result) float64 { return r.SoCKWh }); len(soc) > 0 {
		s.MinSoCKWh = floats.Min(soc)
		s.MaxSoCKWh = floats.Max(soc)
	}

	s.TransformerViolations = lo.CountBy(results, func(r model.Result) bool {
		return r.TransformerViolation
	})

	return s
}

// PrintSummary writes the summary table and, when soc has finite values, an
// ASCII sketch of the state of charge. It returns the first write or table
// error.
func PrintSummary(w io.Writer, s model.Summary, soc []float64) error {
	ew := &errWriter{w: w}
	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "Simulation Summary")
	if s.Ticks > 0 {
		fmt.Fprintf(ew, "  Data: %s to %s\n", s.Range.Start.Format("2006-01-02 15:04"), s.Range.End.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(ew)

	table := tablewriter.NewTable(ew)
	table.Header([]string{"Metric", "Value"})
	rows := [][]string{
		{"Total ticks", fmt.Sprintf("%d", s.Ticks)},
		{"SRL delivered (discharge)", formatKWh(s.SRLOutKWh)},
		{"SRL absorbed (charge)", formatKWh(s.SRLInKWh)},
		{"PS discharge (out)", formatKWh(s.PSOutKWh)},
		{"PS charge (in)", formatKWh(s.PSInKWh)},
		{"Min SoC", formatKWh(s.MinSoCKWh)},
		{"Max SoC", formatKWh(s.MaxSoCKWh)},
		{"Transformer violations", fmt.Sprintf("%d", s.TransformerViolations)},
		{"SRL revenue", fmt.Sprintf("%.2f CHF", s.SRLRevenueCHF())},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return ew.wrap(err)
		}
	}
	if err := table.Render(); err != nil {
		return ew.wrap(err)
	}

	soc = finite(soc)
	if len(soc) > 0 {
		fmt.Fprintln(ew)
		fmt.Fprintln(ew, asciigraph.Plot(soc,
			asciigraph.Height(10),
			asciigraph.Width(72),
			asciigraph.Precision(1),
			asciigraph.Caption("State of Charge [kWh]"),
		))
	}

	if ew.err != nil {
		return ew.wrap(ew.err)
	}
	return nil
}

// errWriter keeps the first write error and drops everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// wrap prefers the underlying write error over whatever the table reports.
func (ew *errWriter) wrap(err error) error {
	if ew.err != nil {
		return fmt.Errorf("writing summary: %w", ew.err)
	}
	return fmt.Errorf("summary table: %w", err)
}

func formatKWh(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f kWh", v)
}

func finite(values []float64) []float64 {
	return lo.Filter(values, func(v float64, _ int) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
}
