package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Render draws fig as a PNG to w.
func Render(fig *Figure, style Style, w io.Writer) error {
	if len(fig.Panels) == 0 {
		return fmt.Errorf("chart %s: no panels", fig.Name)
	}

	height := style.HeightIn
	if fig.HeightIn > 0 {
		height = fig.HeightIn
	}

	plots := make([][]*plot.Plot, len(fig.Panels))
	for i, panel := range fig.Panels {
		p, err := newPlot(panel, style)
		if err != nil {
			return fmt.Errorf("chart %s: panel %d: %w", fig.Name, i, err)
		}
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(style.WidthIn)*vg.Inch, vg.Length(height)*vg.Inch),
		vgimg.UseDPI(style.DPI),
	)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(6),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("chart %s: encoding png: %w", fig.Name, err)
	}
	return nil
}

// WriteFile renders fig and writes it to path. The image is fully encoded
// before the file is created, and the file is closed before returning.
func WriteFile(path string, fig *Figure, style Style) error {
	var buf bytes.Buffer
	if err := Render(fig, style, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func newPlot(panel Panel, style Style) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.Title.TextStyle.Font.Size = vg.Points(style.TitleSizePt)
	p.X.Label.Text = panel.XLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(style.LabelSizePt)
	p.Y.Label.Text = panel.YLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(style.LabelSizePt)
	p.Legend.Top = true

	if style.Grid {
		p.Add(plotter.NewGrid())
	}
	if panel.TimeAxis {
		p.X.Tick.Marker = plot.TimeTicks{Format: style.TimeFormat}
	}

	for _, l := range panel.Lines {
		line, err := plotter.NewLine(l.Points)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", l.Label, err)
		}
		line.Color = l.Color
		line.Width = vg.Points(style.LineWidthPt)
		p.Add(line)
		if panel.Legend {
			p.Legend.Add(l.Label, line)
		}
	}

	var below *plotter.BarChart
	for _, b := range panel.Bars {
		bars, err := plotter.NewBarChart(b.Values, vg.Points(style.BarWidthPt))
		if err != nil {
			return nil, fmt.Errorf("bars %s: %w", b.Label, err)
		}
		bars.Color = b.Color
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		if panel.Legend {
			p.Legend.Add(b.Label, bars)
		}
		below = bars
	}

	if len(panel.Categories) > 0 {
		p.NominalX(panel.Categories...)
	}
	if panel.RotateX {
		p.X.Tick.Label.Rotation = style.XLabelRotationDeg * math.Pi / 180
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	if panel.SharedX {
		p.X.Min = panel.XMin
		p.X.Max = panel.XMax
	}

	return p, nil
}
