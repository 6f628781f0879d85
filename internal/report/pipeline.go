package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"srl_report/internal/chart"
	"srl_report/internal/export"
	"srl_report/internal/ingest"
	"srl_report/internal/model"
	"srl_report/internal/store"
)

// Fixed locations relative to the working directory.
const (
	DefaultInputPath = "data/output/simulation.results.csv"
	DefaultOutputDir = "data/output"

	MonthlyWorkbookFile = "srl_monthly.xlsx"
	ReportPDFFile       = "srl_report.pdf"
)

// Variant selects which part of the report a run produces.
type Variant string

const (
	// VariantFull renders every chart, prints the summary and writes the exports.
	VariantFull Variant = chart.SetFull
	// VariantBasic renders the first four charts only.
	VariantBasic Variant = chart.SetBasic
)

// Pipeline runs one report generation pass.
type Pipeline struct {
	InputPath string
	OutputDir string
	Catalog   *chart.Catalog
	Logger    *log.Logger
	Stdout    io.Writer // summary output; nil disables it
}

// Result lists what a run wrote.
type Result struct {
	Rows    int
	Charts  []string
	Exports []string
	Summary model.Summary
}

// New returns a pipeline with the fixed input and output paths.
func New(catalog *chart.Catalog, logger *log.Logger, stdout io.Writer) *Pipeline {
	return &Pipeline{
		InputPath: DefaultInputPath,
		OutputDir: DefaultOutputDir,
		Catalog:   catalog,
		Logger:    logger,
		Stdout:    stdout,
	}
}

// Run loads the results, derives the aggregates and renders the charts of v in
// catalog order. It stops at the first error; files written before it stay.
func (p *Pipeline) Run(ctx context.Context, v Variant) (*Result, error) {
	specs := p.Catalog.Select(string(v))
	if len(specs) == 0 {
		return nil, fmt.Errorf("no charts in variant %q", v)
	}

	results, err := ingest.LoadResultsFile(p.InputPath)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("loaded results", "path", p.InputPath, "rows", len(results))
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: %w", p.InputPath, ErrNoData)
	}

	s := store.New()
	s.AddResults(results)
	frame := Derive(s)
	if tr, ok := frame.TimeRange(); ok {
		p.Logger.Info("derived aggregates",
			"from", tr.Start.Format("2006-01-02"),
			"to", tr.End.Format("2006-01-02"),
			"months", len(frame.Monthly()))
	}

	res := &Result{Rows: frame.Len()}
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		path := filepath.Join(p.OutputDir, spec.File)
		fig, err := chart.Build(spec, frame)
		if err != nil {
			return res, err
		}
		if err := chart.WriteFile(path, fig, p.Catalog.Style); err != nil {
			return res, err
		}
		res.Charts = append(res.Charts, path)
		p.Logger.Info("wrote chart", "name", spec.Name, "path", path)
	}

	if v != VariantFull {
		return res, nil
	}

	res.Summary = Summarize(frame)
	if p.Stdout != nil {
		soc, _ := frame.Series(model.ColumnSoCKWh)
		if err := PrintSummary(p.Stdout, res.Summary, soc); err != nil {
			return res, err
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	monthly := frame.Monthly()

	xlsxPath := filepath.Join(p.OutputDir, MonthlyWorkbookFile)
	if err := export.WriteMonthlyXLSX(xlsxPath, monthly, res.Summary); err != nil {
		return res, err
	}
	res.Exports = append(res.Exports, xlsxPath)
	p.Logger.Info("wrote workbook", "path", xlsxPath)

	pdfPath := filepath.Join(p.OutputDir, ReportPDFFile)
	if err := export.WriteReportPDF(pdfPath, res.Summary, monthly, res.Charts); err != nil {
		return res, err
	}
	res.Exports = append(res.Exports, pdfPath)
	p.Logger.Info("wrote report", "path", pdfPath)

	return res, nil
}
