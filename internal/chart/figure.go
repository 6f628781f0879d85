package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/plot/plotter"

	"srl_report/internal/model"
)

// ErrNoData is returned when a series has nothing finite to draw.
var ErrNoData = errors.New("no data to plot")

// Source supplies the table a chart is built from.
type Source interface {
	Timestamps() []time.Time
	Series(col model.Column) ([]float64, error)
	Monthly() []model.MonthlyTotal
}

// Figure is everything Render needs to draw one chart. Building it does not
// touch any canvas, so two builds from the same input compare equal.
type Figure struct {
	Name     string
	File     string
	HeightIn float64
	Panels   []Panel
}

// Panel is one plot area. Figures with several panels stack them vertically.
type Panel struct {
	Title      string
	XLabel     string
	YLabel     string
	TimeAxis   bool
	Legend     bool
	Lines      []Line
	Bars       []Bars   // stacked in order, first at the bottom
	Categories []string // x tick labels for Bars
	RotateX    bool

	// Fixed x range, set when panels share a time axis.
	SharedX    bool
	XMin, XMax float64
}

type Line struct {
	Label  string
	Color  color.RGBA
	Points plotter.XYs
}

type Bars struct {
	Label  string
	Color  color.RGBA
	Values plotter.Values
}

// Build turns a chart spec into a figure using data from src.
func Build(spec Spec, src Source) (*Figure, error) {
	fig := &Figure{
		Name:     spec.Name,
		File:     spec.File,
		HeightIn: spec.HeightIn,
	}

	var err error
	switch spec.Kind {
	case KindLine:
		err = buildLine(fig, spec, src)
	case KindMonthlyStacked:
		err = buildMonthlyStacked(fig, spec, src)
	case KindSplit:
		err = buildSplit(fig, spec, src)
	default:
		err = fmt.Errorf("unknown kind %q", spec.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", spec.Name, err)
	}
	return fig, nil
}

func buildLine(fig *Figure, spec Spec, src Source) error {
	times := src.Timestamps()
	panel := Panel{
		Title:    spec.Title,
		XLabel:   spec.XLabel,
		YLabel:   spec.YLabel,
		TimeAxis: true,
		Legend:   len(spec.Series) > 1,
	}

	for _, ser := range spec.Series {
		line, err := buildSeriesLine(ser, times, src)
		if err != nil {
			return err
		}
		panel.Lines = append(panel.Lines, line)
	}

	fig.Panels = []Panel{panel}
	return nil
}

func buildMonthlyStacked(fig *Figure, spec Spec, src Source) error {
	monthly := src.Monthly()
	if len(monthly) == 0 {
		return ErrNoData
	}

	panel := Panel{
		Title:  spec.Title,
		XLabel: spec.XLabel,
		YLabel: spec.YLabel,
		Legend: true,
		Categories: lo.Map(monthly, func(m model.MonthlyTotal, _ int) string {
			return m.Key()
		}),
		RotateX: true,
	}

	for _, ser := range spec.Series {
		c, err := lookupColor(ser.Color)
		if err != nil {
			return err
		}
		values := make(plotter.Values, len(monthly))
		for i, m := range monthly {
			switch ser.Column {
			case model.ColumnSRLEnergyInKWh:
				values[i] = m.SRLEnergyInKWh
			case model.ColumnSRLEnergyOutKWh:
				values[i] = m.SRLEnergyOutKWh
			default:
				return fmt.Errorf("column %s has no monthly aggregate", ser.Column)
			}
		}
		panel.Bars = append(panel.Bars, Bars{Label: ser.Label, Color: c, Values: values})
	}

	fig.Panels = []Panel{panel}
	return nil
}

func buildSplit(fig *Figure, spec Spec, src Source) error {
	times := src.Timestamps()
	xMin, xMax := math.Inf(1), math.Inf(-1)

	for i, ser := range spec.Series {
		line, err := buildSeriesLine(ser, times, src)
		if err != nil {
			return err
		}
		for _, p := range line.Points {
			xMin = math.Min(xMin, p.X)
			xMax = math.Max(xMax, p.X)
		}

		panel := Panel{
			YLabel:   lo.CoalesceOrEmpty(ser.YLabel, spec.YLabel, ser.Label),
			TimeAxis: true,
			Legend:   true,
			Lines:    []Line{line},
			SharedX:  true,
		}
		if i == 0 {
			panel.Title = spec.Title
		}
		if i == len(spec.Series)-1 {
			panel.XLabel = spec.XLabel
		}
		fig.Panels = append(fig.Panels, panel)
	}

	for i := range fig.Panels {
		fig.Panels[i].XMin = xMin
		fig.Panels[i].XMax = xMax
	}
	return nil
}

func buildSeriesLine(ser SeriesSpec, times []time.Time, src Source) (Line, error) {
	c, err := lookupColor(ser.Color)
	if err != nil {
		return Line{}, err
	}
	values, err := src.Series(ser.Column)
	if err != nil {
		return Line{}, err
	}
	if len(values) != len(times) {
		return Line{}, fmt.Errorf("series %s: %d values for %d timestamps", ser.Column, len(values), len(times))
	}

	points := timeXYs(times, values)
	if len(points) == 0 {
		return Line{}, fmt.Errorf("series %s: %w", ser.Column, ErrNoData)
	}
	return Line{Label: ser.Label, Color: c, Points: points}, nil
}

// timeXYs pairs timestamps (as Unix seconds) with values, dropping points
// that are not finite.
func timeXYs(times []time.Time, values []float64) plotter.XYs {
	points := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		points = append(points, plotter.XY{X: unixSeconds(times[i]), Y: v})
	}
	return points
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
