// Package chart renders per-category spending as bar and pie charts.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gochart "github.com/wcharczuk/go-chart/v2"

	"expenselog/internal/core"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// Kind selects the chart type.
type Kind string

const (
	Bar Kind = "bar"
	Pie Kind = "pie"
)

// Renderer draws charts with fixed dimensions and output format.
type Renderer struct {
	Format Format
	Width  int
	Height int
}

func NewRenderer(format Format, width, height int) *Renderer {
	if format != SVG {
		format = PNG
	}
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 500
	}
	return &Renderer{Format: format, Width: width, Height: height}
}

func (r *Renderer) provider() gochart.RendererProvider {
	if r.Format == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Bar draws one bar per category, height being the category total.
func (r *Renderer) Bar(w io.Writer, totals []core.CategoryAmount) error {
	if len(totals) == 0 {
		return ErrNoData
	}

	bars := make([]gochart.Value, 0, len(totals))
	lo, hi := 0.0, 0.0
	for _, t := range totals {
		v := t.Amount.InexactFloat64()
		bars = append(bars, gochart.Value{Label: t.Name, Value: v})
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	bc := gochart.BarChart{
		Title:    "Spending by Category",
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: barWidth(r.Width, len(bars)),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		YAxis: gochart.YAxis{
			Name:  "Total Spent ($)",
			Range: &gochart.ContinuousRange{Min: lo, Max: hi * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return bc.Render(r.provider(), w)
}

// Pie draws one slice per category with a percentage label. Only positive
// totals can be drawn as slices.
func (r *Renderer) Pie(w io.Writer, totals []core.CategoryAmount) error {
	var sum float64
	for _, t := range totals {
		if t.Amount.IsPositive() {
			sum += t.Amount.InexactFloat64()
		}
	}
	if sum == 0 {
		return ErrNoData
	}

	values := make([]gochart.Value, 0, len(totals))
	for _, t := range totals {
		if !t.Amount.IsPositive() {
			continue
		}
		v := t.Amount.InexactFloat64()
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %.1f%%", t.Name, v/sum*100),
			Value: v,
		})
	}

	pc := gochart.PieChart{
		Title:  "Spending Breakdown",
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}
	return pc.Render(r.provider(), w)
}

// RenderFile writes a chart of the given kind into dir and returns its path.
func (r *Renderer) RenderFile(dir string, kind Kind, totals []core.CategoryAmount) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_chart.%s", kind, r.Format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}

	switch kind {
	case Pie:
		err = r.Pie(f, totals)
	default:
		err = r.Bar(f, totals)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func barWidth(width, n int) int {
	w := width / (2 * n)
	if w < 10 {
		return 10
	}
	if w > 80 {
		return 80
	}
	return w
}
