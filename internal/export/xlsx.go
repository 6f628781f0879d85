// Package export writes the monthly SRL totals and the rendered charts into
// spreadsheet and PDF files alongside the PNGs.
package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"srl_report/internal/model"
)

const (
	summarySheet = "summary"
	monthlySheet = "monthly"
)

// WriteMonthlyXLSX writes a workbook with a summary sheet and one row per month.
func WriteMonthlyXLSX(path string, monthly []model.MonthlyTotal, s model.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	summaryRows := [][]any{
		{"SRL Simulation Summary"},
		{},
		{"Total ticks", s.Ticks},
		{"From", timeCell(s.Range.Start)},
		{"To", timeCell(s.Range.End)},
		{"SRL delivered (kWh)", s.SRLOutKWh},
		{"SRL absorbed (kWh)", s.SRLInKWh},
		{"PS discharge (kWh)", s.PSOutKWh},
		{"PS charge (kWh)", s.PSInKWh},
		{"Min SoC (kWh)", numberCell(s.MinSoCKWh)},
		{"Max SoC (kWh)", numberCell(s.MaxSoCKWh)},
		{"Transformer violations", s.TransformerViolations},
		{"SRL revenue (CHF)", s.SRLRevenueCHF()},
	}
	for i, row := range summaryRows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := setColWidth(f, summarySheet, "A", "A", 26); err != nil {
		return err
	}
	if err := setColWidth(f, summarySheet, "B", "B", 20); err != nil {
		return err
	}

	if err := setRow(f, monthlySheet, 1, []any{"Month", "SRL In (kWh)", "SRL Out (kWh)"}); err != nil {
		return err
	}
	for i, m := range monthly {
		if err := setRow(f, monthlySheet, i+2, []any{m.Key(), m.SRLEnergyInKWh, m.SRLEnergyOutKWh}); err != nil {
			return err
		}
	}
	if err := setColWidth(f, monthlySheet, "A", "C", 16); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func setColWidth(f *excelize.File, sheet, from, to string, width float64) error {
	if err := f.SetColWidth(sheet, from, to, width); err != nil {
		return fmt.Errorf("sizing %s!%s:%s: %w", sheet, from, to, err)
	}
	return nil
}

// numberCell leaves missing values blank instead of writing NaN.
func numberCell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}
