package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"srl_report/internal/model"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// timestampLayouts are tried in order. Layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ResultsParser parses simulation.results.csv as written by the simulator.
//
// Expected format (extra columns are ignored, order does not matter):
//
//	timestamp,soc_kwh,grid_net_kw,battery_in_kw,battery_out_kw,srl_energy_in_kwh,srl_energy_out_kwh
//	2024-01-01T00:00:00Z,600.0,-12.5,0.0,3.2,0.05,0.0
//
// Unlike the sensor exports it is strict: a row that does not parse fails the
// whole file.
type ResultsParser struct{}

func (p *ResultsParser) Parse(r io.Reader) ([]model.Result, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	var results []model.Result
	lineNum := 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		result, err := parseResultRecord(record, idx, lineNum)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// LoadResultsFile opens path and parses it with a ResultsParser.
func LoadResultsFile(path string) ([]model.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	results, err := (&ResultsParser{}).Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return results, nil
}

// columnIndex maps a column to its position in the record. Optional columns
// absent from the header are not in the map.
type columnIndex map[model.Column]int

func indexHeader(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := idx[model.Column(name)]; !dup {
			idx[model.Column(name)] = i
		}
	}

	for _, col := range model.RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("header: %w %q", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func parseResultRecord(record []string, idx columnIndex, lineNum int) (model.Result, error) {
	var res model.Result

	ts, err := parseTimestamp(strings.TrimSpace(record[idx[model.ColumnTimestamp]]))
	if err != nil {
		return model.Result{}, fmt.Errorf("line %d: parsing %s: %w", lineNum, model.ColumnTimestamp, err)
	}
	res.Timestamp = ts

	floats := []struct {
		col      model.Column
		dst      *float64
		optional bool
	}{
		{model.ColumnSoCKWh, &res.SoCKWh, false},
		{model.ColumnGridNetKW, &res.GridNetKW, false},
		{model.ColumnBatteryInKW, &res.BatteryInKW, false},
		{model.ColumnBatteryOutKW, &res.BatteryOutKW, false},
		{model.ColumnSRLEnergyInKWh, &res.SRLEnergyInKWh, false},
		{model.ColumnSRLEnergyOutKWh, &res.SRLEnergyOutKWh, false},
		{model.ColumnSoCPercent, &res.SoCPercent, true},
		{model.ColumnSRLRevenuePosCHF, &res.SRLRevenuePosCHF, true},
		{model.ColumnSRLRevenueNegCHF, &res.SRLRevenueNegCHF, true},
	}
	for _, f := range floats {
		i, ok := idx[f.col]
		if !ok {
			// Only optional columns can be absent here; indexHeader checked the rest.
			*f.dst = math.NaN()
			continue
		}
		v, err := parseFloat(record[i])
		if err != nil {
			return model.Result{}, fmt.Errorf("line %d: parsing %s: %w", lineNum, f.col, err)
		}
		*f.dst = v
	}

	if i, ok := idx[model.ColumnTransformerViolation]; ok {
		s := strings.TrimSpace(record[i])
		if s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return model.Result{}, fmt.Errorf("line %d: parsing %s: %w", lineNum, model.ColumnTransformerViolation, err)
			}
			res.TransformerViolation = v
		}
	}

	return res, nil
}

// parseFloat treats an empty cell as a missing value. strconv already
// accepts "NaN" in any case.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
