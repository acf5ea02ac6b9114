// Package render draws engine chart configs as PNG images.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/solutions/engine"
)

// Default image size.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// PNG draws a "bar", "stacked_bar" or "bar_line" chart. Pie charts are not
// supported.
func PNG(w io.Writer, cfg *engine.ChartConfig, width, height vg.Length) error {
	if cfg == nil || len(cfg.Series) == 0 {
		return fmt.Errorf("nothing to draw")
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	p.Legend.Top = true
	if cfg.ShowGrid {
		p.Add(plotter.NewGrid())
	}

	var bars []*plotter.BarChart
	for _, s := range cfg.Series {
		kind := s.Type
		if kind == "" {
			kind = cfg.ChartType
		}
		switch kind {
		case "bar", "stacked_bar":
			values := make(plotter.Values, len(s.Data))
			for i, pt := range s.Data {
				values[i] = pt.Value
			}
			b, err := plotter.NewBarChart(values, vg.Points(18))
			if err != nil {
				return fmt.Errorf("series %s: %w", s.Name, err)
			}
			b.Color = hexColor(s.Color)
			b.LineStyle.Width = vg.Length(0)
			bars = append(bars, b)
			p.Add(b)
			if cfg.ShowLegend {
				p.Legend.Add(s.Name, b)
			}
		case "line":
			xys := make(plotter.XYs, len(s.Data))
			for i, pt := range s.Data {
				xys[i] = plotter.XY{X: float64(i), Y: pt.Value}
			}
			l, err := plotter.NewLine(xys)
			if err != nil {
				return fmt.Errorf("series %s: %w", s.Name, err)
			}
			l.Color = hexColor(s.Color)
			l.Width = vg.Points(2)
			p.Add(l)
			if cfg.ShowLegend {
				p.Legend.Add(s.Name, l)
			}
		default:
			return fmt.Errorf("chart type %q cannot be drawn", kind)
		}
	}

	if cfg.ChartType == "stacked_bar" {
		for i := 1; i < len(bars); i++ {
			bars[i].StackOn(bars[i-1])
		}
	} else if len(bars) > 1 {
		// Side by side, centred on each tick.
		n := float64(len(bars))
		for i, b := range bars {
			b.Offset = vg.Length((float64(i) - (n-1)/2)) * b.Width
		}
	}

	labels := make([]string, len(cfg.Series[0].Data))
	for i, pt := range cfg.Series[0].Data {
		labels[i] = pt.Label
	}
	p.NominalX(labels...)
	if len(labels) > 8 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", cfg.Title, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// TrendChart draws monthly registrations with the running total.
func TrendChart(w io.Writer, rows []engine.TrendRow, valueLabel string) error {
	return PNG(w, engine.TrendChart(rows, valueLabel), DefaultWidth, DefaultHeight)
}

// RegionalChart draws beneficiaries and achieved solutions per region.
func RegionalChart(w io.Writer, rows []engine.RegionRow) error {
	return PNG(w, engine.RegionalChart(rows), DefaultWidth, DefaultHeight)
}

// ProgressChart draws the stacked stage counts of each pathway.
func ProgressChart(w io.Writer, rows []engine.ProgressRow) error {
	return PNG(w, engine.ProgressChart(rows), DefaultWidth, DefaultHeight)
}

// hexColor parses "#RRGGBB", falling back to grey.
func hexColor(hex string) color.Color {
	if len(hex) == 7 && hex[0] == '#' {
		if v, err := strconv.ParseUint(hex[1:], 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	return color.RGBA{R: 0x7F, G: 0x8C, B: 0x8D, A: 255}
}
