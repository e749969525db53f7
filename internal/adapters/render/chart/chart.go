// Package chart renders dashboard series as PNG images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/okian/stemmap/internal/domain/dashboard"
)

// Chart names, as used in /api/charts/{name}.png.
const (
	EncountersByYear   = "encounters-by-year"
	AttendeesByYear    = "attendees-by-year"
	EncountersByRegion = "encounters-by-region"
)

// Names lists the charts in page order.
var Names = []string{EncountersByYear, AttendeesByYear, EncountersByRegion}

// ErrUnknownChart is returned for a chart name outside Names.
var ErrUnknownChart = errors.New("unknown chart")

// Kind is the plot style of a chart.
type Kind int

const (
	Line Kind = iota
	Bar
)

// Default image size.
const (
	Width  = 8 * vg.Inch
	Height = 4 * vg.Inch
)

var (
	lineColor = color.RGBA{R: 181, G: 18, B: 27, A: 255}
	barColor  = color.RGBA{R: 54, G: 162, B: 235, A: 255}
)

// Select picks the named series out of charts with its plot style.
func Select(charts dashboard.Charts, name string) (dashboard.Series, Kind, error) {
	switch name {
	case EncountersByYear:
		return charts.EncountersByYear, Line, nil
	case AttendeesByYear:
		return charts.AttendeesByYear, Bar, nil
	case EncountersByRegion:
		return charts.EncountersByRegion, Bar, nil
	default:
		return dashboard.Series{}, 0, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

// Render draws s as a PNG into w. An empty series yields an empty frame.
func Render(w io.Writer, s dashboard.Series, kind Kind) error {
	p := plot.New()
	p.Title.Text = s.Label
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	if len(s.Values) > 0 {
		var err error
		switch kind {
		case Line:
			err = addLine(p, s.Values)
		default:
			err = addBars(p, s.Values)
		}
		if err != nil {
			return err
		}
		p.NominalX(s.Labels...)
		if len(s.Labels) > 8 {
			p.X.Tick.Label.Rotation = math.Pi / 4
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
	}

	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("chart %q: %w", s.Label, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func addLine(p *plot.Plot, values []int) error {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = float64(v)
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = lineColor
	line.Width = vg.Points(2)
	points.Color = lineColor
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	return nil
}

func addBars(p *plot.Plot, values []int) error {
	vs := make(plotter.Values, len(values))
	for i, v := range values {
		vs[i] = float64(v)
	}
	bars, err := plotter.NewBarChart(vs, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	return nil
}
