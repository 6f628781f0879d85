package export

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"srl_report/internal/model"
)

// WriteReportPDF writes a summary page followed by one landscape page per chart.
func WriteReportPDF(path string, s model.Summary, monthly []model.MonthlyTotal, charts []string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("SRL Simulation Report", true)
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "SRL Simulation Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, l := range summaryLines(s) {
		pdf.Cell(0, 6, l)
		pdf.Ln(5)
	}

	if len(monthly) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, "Month", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, "SRL In (kWh)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, "SRL Out (kWh)", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, m := range monthly {
			pdf.CellFormat(40, 6, m.Key(), "1", 0, "C", false, 0, "")
			pdf.CellFormat(50, 6, fmt.Sprintf("%.3f", m.SRLEnergyInKWh), "1", 0, "R", false, 0, "")
			pdf.CellFormat(50, 6, fmt.Sprintf("%.3f", m.SRLEnergyOutKWh), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	maxW := pageW - left - right
	maxH := pageH - top - bottom - 8
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	for _, chart := range charts {
		info := pdf.RegisterImageOptions(chart, opts)
		if !pdf.Ok() {
			break
		}

		// Scale to the page width, then shrink to fit the height.
		w := maxW
		h := w * info.Height() / info.Width()
		if h > maxH {
			h = maxH
			w = h * info.Width() / info.Height()
		}

		pdf.AddPage()
		pdf.SetFont("Arial", "", 9)
		pdf.Cell(0, 5, filepath.Base(chart))
		pdf.ImageOptions(chart, left, top+8, w, h, false, opts, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func summaryLines(s model.Summary) []string {
	return []string{
		fmt.Sprintf("Data: %s to %s", timeCell(s.Range.Start), timeCell(s.Range.End)),
		fmt.Sprintf("Total ticks: %d", s.Ticks),
		"SRL delivered (discharge): " + kwhText(s.SRLOutKWh, 2),
		"SRL absorbed (charge): " + kwhText(s.SRLInKWh, 2),
		"PS discharge (out): " + kwhText(s.PSOutKWh, 2),
		"PS charge (in): " + kwhText(s.PSInKWh, 2),
		"Min SoC: " + kwhText(s.MinSoCKWh, 1) + "   Max SoC: " + kwhText(s.MaxSoCKWh, 1),
		fmt.Sprintf("Transformer violations: %d", s.TransformerViolations),
		fmt.Sprintf("SRL revenue: %.2f CHF", s.SRLRevenueCHF()),
	}
}

// kwhText renders a missing value as "-", like the terminal summary.
func kwhText(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.*f kWh", prec, v)
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
