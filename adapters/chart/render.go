package chart

import (
	"fmt"
	"io"
	"math"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default canvas size in pixels
const (
	DefaultWidth  = 720
	DefaultHeight = 420
)

// Marker highlights a single point, e.g. a prediction
type Marker struct {
	X     float64
	Y     float64
	Label string
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color, width float64) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}

// ScatterWithFit draws the measured points, the fitted line across their
// x range and an optional marker, as PNG.
func ScatterWithFit(w io.Writer, pair stats.PairedSample, fit stats.LinearFit, marker *Marker) error {
	if pair.Len() < 2 {
		return core.NewInsufficientDataError("chart", len(pair.X), 2)
	}

	minX, maxX := bounds(pair.X)
	if marker != nil {
		minX = math.Min(minX, marker.X)
		maxX = math.Max(maxX, marker.X)
	}

	series := []gochart.Series{
		gochart.ContinuousSeries{
			Name:    "Measured",
			XValues: pair.X,
			YValues: pair.Y,
			Style:   pointStyle(gochart.ColorBlue, 4),
		},
		gochart.ContinuousSeries{
			Name:    fmt.Sprintf("Fit: y = %.3fx %+.2f", fit.Slope, fit.Intercept),
			XValues: []float64{minX, maxX},
			YValues: []float64{fit.Predict(minX), fit.Predict(maxX)},
			Style: gochart.Style{
				StrokeColor: gochart.ColorRed,
				StrokeWidth: 2,
			},
		},
	}
	if marker != nil {
		series = append(series, gochart.ContinuousSeries{
			Name:    marker.Label,
			XValues: []float64{marker.X},
			YValues: []float64{marker.Y},
			Style:   pointStyle(gochart.ColorOrange, 7),
		})
	}

	ch := gochart.Chart{
		Title:      fmt.Sprintf("%s vs %s (r = %.3f)", labelOr(pair.YLabel, "Y"), labelOr(pair.XLabel, "X"), fit.Correlation),
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: labelOr(pair.XLabel, "X")},
		YAxis:      gochart.YAxis{Name: labelOr(pair.YLabel, "Y")},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render scatter chart: %w", err)
	}
	return nil
}

// GroupBars draws one bar per group mean, as PNG.
func GroupBars(w io.Writer, title string, groups []stats.GroupStats) error {
	if len(groups) == 0 {
		return core.NewInvalidInputError("chart", "no groups to draw")
	}

	bars := make([]gochart.Value, 0, len(groups))
	lo, hi := 0.0, 0.0
	for _, g := range groups {
		bars = append(bars, gochart.Value{
			Label: fmt.Sprintf("%s (n=%d)", labelOr(g.Label, "group"), g.Count),
			Value: g.Mean,
		})
		lo = math.Min(lo, g.Mean)
		hi = math.Max(hi, g.Mean)
	}
	if hi == lo {
		hi = lo + 1
	}

	bc := gochart.BarChart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		BarWidth:   80,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: lo, Max: hi * 1.15},
		},
		Bars: bars,
	}

	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
