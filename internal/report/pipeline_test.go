package report

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srl_report/internal/chart"
	"srl_report/internal/ingest"
)

var fullCharts = []string{
	"soc_over_time.png",
	"grid_power_over_time.png",
	"battery_io.png",
	"srl_over_time.png",
	"srl_cumulative.png",
	"srl_monthly_stacked.png",
	"srl_split_subplots.png",
}

func newTestPipeline(t *testing.T, csv string) (*Pipeline, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "simulation.results.csv")
	require.NoError(t, os.WriteFile(input, []byte(csv), 0o644))

	catalog, err := chart.LoadCatalog()
	require.NoError(t, err)

	var stdout bytes.Buffer
	p := New(catalog, log.New(io.Discard), &stdout)
	p.InputPath = input
	p.OutputDir = dir
	return p, &stdout
}

func sampleCSV(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/simulation_sample.csv")
	require.NoError(t, err)
	return string(data)
}

func pngsIn(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	return names
}

func TestPipeline_Full(t *testing.T) {
	p, stdout := newTestPipeline(t, sampleCSV(t))

	res, err := p.Run(context.Background(), VariantFull)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Rows)
	require.Len(t, res.Charts, len(fullCharts))
	for i, name := range fullCharts {
		assert.Equal(t, filepath.Join(p.OutputDir, name), res.Charts[i])
		assert.FileExists(t, res.Charts[i])
	}

	assert.Equal(t, []string{
		filepath.Join(p.OutputDir, MonthlyWorkbookFile),
		filepath.Join(p.OutputDir, ReportPDFFile),
	}, res.Exports)
	for _, path := range res.Exports {
		assert.FileExists(t, path)
	}

	assert.Equal(t, 6, res.Summary.Ticks)
	assert.Equal(t, 1, res.Summary.TransformerViolations)
	assert.InDelta(t, 1.7, res.Summary.SRLInKWh, 1e-9)
	assert.InDelta(t, 1.1, res.Summary.SRLOutKWh, 1e-9)
	assert.Contains(t, stdout.String(), "Simulation Summary")
}

func TestPipeline_Basic(t *testing.T) {
	p, stdout := newTestPipeline(t, sampleCSV(t))

	res, err := p.Run(context.Background(), VariantBasic)
	require.NoError(t, err)

	assert.ElementsMatch(t, fullCharts[:4], pngsIn(t, p.OutputDir))
	assert.Len(t, res.Charts, 4)
	assert.Empty(t, res.Exports)
	assert.Empty(t, stdout.String())
	assert.NoFileExists(t, filepath.Join(p.OutputDir, MonthlyWorkbookFile))
}

func TestPipeline_Rerun(t *testing.T) {
	p, _ := newTestPipeline(t, sampleCSV(t))

	first, err := p.Run(context.Background(), VariantFull)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), VariantFull)
	require.NoError(t, err)

	assert.Equal(t, first.Charts, second.Charts)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestPipeline_MissingTimestampColumn(t *testing.T) {
	csv := "soc_kwh,grid_net_kw,battery_in_kw,battery_out_kw,srl_energy_in_kwh,srl_energy_out_kwh\n1,2,3,4,5,6\n"
	p, _ := newTestPipeline(t, csv)

	_, err := p.Run(context.Background(), VariantFull)

	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrMissingColumn)
	assert.Empty(t, pngsIn(t, p.OutputDir))
}

func TestPipeline_HeaderOnly(t *testing.T) {
	header := strings.SplitN(sampleCSV(t), "\n", 2)[0] + "\n"
	p, _ := newTestPipeline(t, header)

	_, err := p.Run(context.Background(), VariantFull)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Empty(t, pngsIn(t, p.OutputDir))
}

func TestPipeline_MissingInput(t *testing.T) {
	p, _ := newTestPipeline(t, "")
	p.InputPath = filepath.Join(p.OutputDir, "nope.csv")

	_, err := p.Run(context.Background(), VariantFull)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_MissingOutputDir(t *testing.T) {
	p, _ := newTestPipeline(t, sampleCSV(t))
	p.OutputDir = filepath.Join(p.OutputDir, "missing")

	res, err := p.Run(context.Background(), VariantBasic)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, res.Charts)
}

func TestPipeline_StopsAtFailingChart(t *testing.T) {
	// grid_net_kw has no values, so the second chart fails and the first stays.
	csv := `timestamp,soc_kwh,grid_net_kw,battery_in_kw,battery_out_kw,srl_energy_in_kwh,srl_energy_out_kwh
2024-01-15T10:00:00Z,600,,0,1,2,1
2024-02-15T10:00:00Z,598,,1,0,3,1.5
`
	p, _ := newTestPipeline(t, csv)

	res, err := p.Run(context.Background(), VariantFull)

	require.Error(t, err)
	assert.ErrorIs(t, err, chart.ErrNoData)
	assert.Contains(t, err.Error(), "grid_power")
	assert.Equal(t, []string{"soc_over_time.png"}, pngsIn(t, p.OutputDir))
	require.Len(t, res.Charts, 1)
}

func TestPipeline_Canceled(t *testing.T) {
	p, _ := newTestPipeline(t, sampleCSV(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, VariantFull)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pngsIn(t, p.OutputDir))
}

func TestPipeline_UnknownVariant(t *testing.T) {
	p, _ := newTestPipeline(t, sampleCSV(t))

	_, err := p.Run(context.Background(), Variant("weekly"))

	assert.Error(t, err)
}

type brokenStdout struct{}

func (brokenStdout) Write([]byte) (int, error) {
	return 0, os.ErrClosed
}

func TestPipeline_SummaryWriteError(t *testing.T) {
	p, _ := newTestPipeline(t, sampleCSV(t))
	p.Stdout = brokenStdout{}

	res, err := p.Run(context.Background(), VariantFull)

	assert.ErrorIs(t, err, os.ErrClosed)
	assert.Len(t, res.Charts, len(fullCharts))
	assert.Empty(t, res.Exports)
}
