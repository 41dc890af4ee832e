package chart

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/ecboard/internal/table"
)

// Default canvas size of one panel.
const (
	PanelWidth  = 5 * vg.Inch
	PanelHeight = 3.5 * vg.Inch
)

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f"}

// RenderPNG draws fig as a PNG image sized by its grid.
func RenderPNG(w io.Writer, fig Figure) error {
	rows, cols := fig.Rows, fig.Cols
	if rows <= 0 || cols <= 0 {
		rows, cols = len(fig.Panels), 1
	}
	if rows*cols < len(fig.Panels) {
		return fmt.Errorf("figure %q: %d panels do not fit a %dx%d grid", fig.Name, len(fig.Panels), rows, cols)
	}
	if len(fig.Panels) == 0 {
		return fmt.Errorf("figure %q has no panels", fig.Name)
	}

	plots := make([][]*plot.Plot, rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, cols)
		for i := range plots[j] {
			k := j*cols + i
			if k >= len(fig.Panels) {
				blank := plot.New()
				blank.HideAxes()
				plots[j][i] = blank
				continue
			}
			p, err := panelPlot(fig.Panels[k])
			if err != nil {
				return fmt.Errorf("figure %q panel %d: %w", fig.Name, k+1, err)
			}
			plots[j][i] = p
		}
	}

	img := vgimg.New(vg.Length(cols)*PanelWidth, vg.Length(rows)*PanelHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func panelPlot(pn Panel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = pn.Title
	p.X.Label.Text = pn.XLabel
	p.Y.Label.Text = pn.YLabel
	p.Add(plotter.NewGrid())

	var err error
	switch pn.Kind {
	case Bar:
		err = addBars(p, pn.Series)
	case Line:
		err = addLines(p, pn.Series)
	case Box:
		err = addBoxes(p, pn.Series)
	case Scatter:
		err = addScatter(p, pn.Series)
	default:
		err = fmt.Errorf("unsupported panel kind %q", pn.Kind)
	}
	if err != nil {
		return nil, err
	}

	for _, r := range pn.RefLines {
		y := r.Y
		fn := plotter.NewFunction(func(float64) float64 { return y })
		fn.Color = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
		fn.Width = vg.Points(1)
		if r.Dashed {
			fn.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		}
		p.Add(fn)
		if r.Label != "" {
			p.Legend.Add(r.Label, fn)
		}
		if y > p.Y.Max {
			p.Y.Max = y * 1.1
		}
	}
	if len(pn.Series) > 1 || len(pn.RefLines) > 0 {
		p.Legend.Top = true
	}
	return p, nil
}

// addBars draws grouped bars over the label categories of the first series. Missing values
// draw as zero-height bars so categories stay aligned.
func addBars(p *plot.Plot, series []Series) error {
	if len(series) == 0 || len(series[0].Points) == 0 {
		return nil
	}
	labels := make([]string, len(series[0].Points))
	for i, pt := range series[0].Points {
		labels[i] = pt.Label
	}
	width := vg.Points(40) / vg.Length(len(series))
	for k, s := range series {
		vals := make(plotter.Values, len(labels))
		for i := range vals {
			if i < len(s.Points) && s.Points[i].Y != nil {
				vals[i] = *s.Points[i].Y
			}
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return fmt.Errorf("bars %q: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = seriesColor(s, k)
		if len(series) > 1 {
			bars.Offset = vg.Length(float64(k)-float64(len(series)-1)/2) * width
			p.Legend.Add(s.Name, bars)
		}
		p.Add(bars)
	}
	p.NominalX(labels...)
	return nil
}

// addLines plots each series in point order. When every label parses as a timestamp the x axis
// is time, otherwise it is the point index.
func addLines(p *plot.Plot, series []Series) error {
	for k, s := range series {
		xs, timed := timeAxis(s.Points)
		pts := make(plotter.XYs, 0, len(s.Points))
		for i, pt := range s.Points {
			if pt.Y == nil {
				continue
			}
			pts = append(pts, plotter.XY{X: xs[i], Y: *pt.Y})
		}
		if len(pts) == 0 {
			continue
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line %q: %w", s.Name, err)
		}
		l.Color = seriesColor(s, k)
		l.Width = vg.Points(1.5)
		p.Add(l)
		if len(series) > 1 {
			p.Legend.Add(s.Name, l)
		}
		if timed {
			p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
		}
	}
	return nil
}

func addBoxes(p *plot.Plot, series []Series) error {
	var names []string
	for k, s := range series {
		vals := make(plotter.Values, 0, len(s.Points))
		for _, pt := range s.Points {
			if pt.Y != nil {
				vals = append(vals, *pt.Y)
			}
		}
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(30), float64(len(names)), vals)
		if err != nil {
			return fmt.Errorf("box %q: %w", s.Name, err)
		}
		b.FillColor = seriesColor(s, k)
		p.Add(b)
		names = append(names, s.Name)
	}
	if len(names) > 0 {
		p.NominalX(names...)
	}
	return nil
}

func addScatter(p *plot.Plot, series []Series) error {
	for k, s := range series {
		pts := make(plotter.XYs, 0, len(s.Points))
		for _, pt := range s.Points {
			if pt.X == nil || pt.Y == nil {
				continue
			}
			pts = append(pts, plotter.XY{X: *pt.X, Y: *pt.Y})
		}
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scatter %q: %w", s.Name, err)
		}
		sc.GlyphStyle.Color = seriesColor(s, k)
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(s.Name, sc)
	}
	return nil
}

func timeAxis(points []Point) ([]float64, bool) {
	xs := make([]float64, len(points))
	timed := len(points) > 0
	for i, pt := range points {
		t, ok := table.ParseTime(pt.Label)
		if !ok {
			timed = false
			break
		}
		xs[i] = float64(t.Unix())
	}
	if timed {
		return xs, true
	}
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs, false
}

func seriesColor(s Series, k int) color.Color {
	if c, err := ParseColor(s.Color); err == nil {
		return c
	}
	for _, pt := range s.Points {
		if c, err := ParseColor(pt.Color); err == nil {
			return c
		}
	}
	c, _ := ParseColor(palette[k%len(palette)])
	return c
}

// ParseColor parses a #rrggbb hex color.
func ParseColor(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
