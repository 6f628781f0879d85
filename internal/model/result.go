package model

import (
	"math"
	"time"
)

// Column names a column of the simulation results table, either read from the
// CSV or derived from it in memory.
type Column string

const (
	ColumnTimestamp       Column = "timestamp"
	ColumnSoCKWh          Column = "soc_kwh"
	ColumnGridNetKW       Column = "grid_net_kw"
	ColumnBatteryInKW     Column = "battery_in_kw"
	ColumnBatteryOutKW    Column = "battery_out_kw"
	ColumnSRLEnergyInKWh  Column = "srl_energy_in_kwh"
	ColumnSRLEnergyOutKWh Column = "srl_energy_out_kwh"

	// Optional columns written by the simulator. Only the run summary reads them.
	ColumnSoCPercent           Column = "soc_percent"
	ColumnTransformerViolation Column = "transformer_violation"
	ColumnSRLRevenuePosCHF     Column = "srl_revenue_pos_chf"
	ColumnSRLRevenueNegCHF     Column = "srl_revenue_neg_chf"

	// Derived in memory, never read from the CSV.
	ColumnSRLInCumsum  Column = "srl_in_cumsum"
	ColumnSRLOutCumsum Column = "srl_out_cumsum"
)

// RequiredColumns must all be present in the results header.
var RequiredColumns = []Column{
	ColumnTimestamp,
	ColumnSoCKWh,
	ColumnGridNetKW,
	ColumnBatteryInKW,
	ColumnBatteryOutKW,
	ColumnSRLEnergyInKWh,
	ColumnSRLEnergyOutKWh,
}

// ColumnInfo holds display name and unit for a column.
type ColumnInfo struct {
	Name string
	Unit string
}

// ColumnCatalog maps every known Column to its display name and unit.
var ColumnCatalog = map[Column]ColumnInfo{
	ColumnSoCKWh:               {Name: "State of Charge", Unit: "kWh"},
	ColumnGridNetKW:            {Name: "Grid Net Power", Unit: "kW"},
	ColumnBatteryInKW:          {Name: "Battery Charge", Unit: "kW"},
	ColumnBatteryOutKW:         {Name: "Battery Discharge", Unit: "kW"},
	ColumnSRLEnergyInKWh:       {Name: "SRL Charge", Unit: "kWh"},
	ColumnSRLEnergyOutKWh:      {Name: "SRL Discharge", Unit: "kWh"},
	ColumnSoCPercent:           {Name: "State of Charge", Unit: "%"},
	ColumnTransformerViolation: {Name: "Transformer Violation", Unit: ""},
	ColumnSRLRevenuePosCHF:     {Name: "SRL Revenue (pos)", Unit: "CHF"},
	ColumnSRLRevenueNegCHF:     {Name: "SRL Revenue (neg)", Unit: "CHF"},
	ColumnSRLInCumsum:          {Name: "Cumulative SRL Charge", Unit: "kWh"},
	ColumnSRLOutCumsum:         {Name: "Cumulative SRL Discharge", Unit: "kWh"},
}

// Result is one simulation tick as written to simulation.results.csv.
// Missing numeric cells are NaN.
type Result struct {
	Timestamp       time.Time
	SoCKWh          float64
	GridNetKW       float64
	BatteryInKW     float64
	BatteryOutKW    float64
	SRLEnergyInKWh  float64
	SRLEnergyOutKWh float64

	SoCPercent           float64
	TransformerViolation bool
	SRLRevenuePosCHF     float64
	SRLRevenueNegCHF     float64
}

// Value returns the numeric value of an input column. ok is false for the
// timestamp, the violation flag and derived columns.
func (r Result) Value(c Column) (v float64, ok bool) {
	switch c {
	case ColumnSoCKWh:
		return r.SoCKWh, true
	case ColumnGridNetKW:
		return r.GridNetKW, true
	case ColumnBatteryInKW:
		return r.BatteryInKW, true
	case ColumnBatteryOutKW:
		return r.BatteryOutKW, true
	case ColumnSRLEnergyInKWh:
		return r.SRLEnergyInKWh, true
	case ColumnSRLEnergyOutKWh:
		return r.SRLEnergyOutKWh, true
	case ColumnSoCPercent:
		return r.SoCPercent, true
	case ColumnSRLRevenuePosCHF:
		return r.SRLRevenuePosCHF, true
	case ColumnSRLRevenueNegCHF:
		return r.SRLRevenueNegCHF, true
	}
	return math.NaN(), false
}

// MonthlyTotal is the SRL energy summed over one calendar month.
type MonthlyTotal struct {
	Month           time.Time // first instant of the month
	SRLEnergyInKWh  float64
	SRLEnergyOutKWh float64
}

// Key returns the month as "2006-01".
func (m MonthlyTotal) Key() string {
	return m.Month.Format("2006-01")
}

// MonthStart truncates t to the first instant of its calendar month,
// keeping t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}
