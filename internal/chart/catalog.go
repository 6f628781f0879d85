package chart

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"srl_report/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrUnknownColor is returned for a colour name outside the SVG palette.
var ErrUnknownColor = errors.New("unknown color")

// Kind selects how a chart is laid out.
type Kind string

const (
	KindLine           Kind = "line"            // series vs time on one panel
	KindMonthlyStacked Kind = "monthly_stacked" // stacked bars per calendar month
	KindSplit          Kind = "split"           // one panel per series, shared time range
)

// Chart sets. Every chart belongs to at least one.
const (
	SetFull  = "full"
	SetBasic = "basic"
)

// Catalog is the fixed chart list plus the style every chart is drawn with.
type Catalog struct {
	Style  Style  `yaml:"style"`
	Charts []Spec `yaml:"charts"`
}

// Style is passed explicitly to Render; there is no package-level style.
type Style struct {
	WidthIn           float64 `yaml:"width_in"`
	HeightIn          float64 `yaml:"height_in"`
	DPI               int     `yaml:"dpi"`
	TitleSizePt       float64 `yaml:"title_size_pt"`
	LabelSizePt       float64 `yaml:"label_size_pt"`
	LineWidthPt       float64 `yaml:"line_width_pt"`
	BarWidthPt        float64 `yaml:"bar_width_pt"`
	Grid              bool    `yaml:"grid"`
	TimeFormat        string  `yaml:"time_format"`
	XLabelRotationDeg float64 `yaml:"x_label_rotation_deg"`
}

// Spec describes one chart.
type Spec struct {
	Name     string       `yaml:"name"`
	Kind     Kind         `yaml:"kind"`
	Title    string       `yaml:"title"`
	XLabel   string       `yaml:"x_label"`
	YLabel   string       `yaml:"y_label"`
	File     string       `yaml:"file"`
	HeightIn float64      `yaml:"height_in"` // overrides Style.HeightIn when set
	Sets     []string     `yaml:"sets"`
	Series   []SeriesSpec `yaml:"series"`
}

// SeriesSpec is one plotted column.
type SeriesSpec struct {
	Column model.Column `yaml:"column"`
	Label  string       `yaml:"label"`
	YLabel string       `yaml:"y_label"` // split panels only
	Color  string       `yaml:"color"`
}

// LoadCatalog decodes the embedded chart catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes and validates a catalog document. Unknown keys are errors.
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding chart catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Select returns the charts of a set in catalog order.
func (c *Catalog) Select(set string) []Spec {
	return lo.Filter(c.Charts, func(s Spec, _ int) bool {
		return lo.Contains(s.Sets, set)
	})
}

func (c *Catalog) Validate() error {
	if err := c.Style.validate(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	if len(c.Charts) == 0 {
		return fmt.Errorf("chart catalog is empty")
	}

	names := make(map[string]bool, len(c.Charts))
	files := make(map[string]bool, len(c.Charts))
	for i, s := range c.Charts {
		if s.Name == "" {
			return fmt.Errorf("chart %d: missing name", i)
		}
		if names[s.Name] {
			return fmt.Errorf("chart %s: duplicate name", s.Name)
		}
		names[s.Name] = true

		if files[s.File] {
			return fmt.Errorf("chart %s: duplicate file %q", s.Name, s.File)
		}
		files[s.File] = true

		if err := s.validate(); err != nil {
			return fmt.Errorf("chart %s: %w", s.Name, err)
		}
	}
	return nil
}

func (st Style) validate() error {
	if st.WidthIn <= 0 || st.HeightIn <= 0 {
		return fmt.Errorf("figure size must be positive, got %vx%v in", st.WidthIn, st.HeightIn)
	}
	if st.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", st.DPI)
	}
	if st.TimeFormat == "" {
		return fmt.Errorf("missing time_format")
	}
	return nil
}

func (s Spec) validate() error {
	switch s.Kind {
	case KindLine, KindMonthlyStacked, KindSplit:
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}

	if s.File == "" || filepath.Base(s.File) != s.File || !strings.HasSuffix(s.File, ".png") {
		return fmt.Errorf("file must be a bare .png name, got %q", s.File)
	}
	if s.HeightIn < 0 {
		return fmt.Errorf("height_in must not be negative")
	}

	if len(s.Sets) == 0 {
		return fmt.Errorf("not in any set")
	}
	for _, set := range s.Sets {
		if set != SetFull && set != SetBasic {
			return fmt.Errorf("unknown set %q", set)
		}
	}

	if len(s.Series) == 0 {
		return fmt.Errorf("no series")
	}
	for _, ser := range s.Series {
		if ser.Column == "" {
			return fmt.Errorf("series %q: missing column", ser.Label)
		}
		if _, err := lookupColor(ser.Color); err != nil {
			return fmt.Errorf("series %s: %w", ser.Column, err)
		}
	}
	return nil
}

func lookupColor(name string) (color.RGBA, error) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w %q", ErrUnknownColor, name)
	}
	return c, nil
}
