package chart

import (
	"bytes"
	"image/png"
	"testing"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScatterWithFit(t *testing.T) {
	pair := stats.NewPairedSample("Torque (N·m)", "Tension (kN)",
		[]float64{20, 40, 60, 80, 100},
		[]float64{8.2, 15.4, 24.1, 31.0, 39.9})
	fit := stats.LinearFit{Slope: 0.394, Intercept: 0.1, Correlation: 0.998}

	var buf bytes.Buffer
	require.NoError(t, ScatterWithFit(&buf, pair, fit, &Marker{X: 110, Y: 43.4, Label: "Prediction"}))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, DefaultHeight, cfg.Height)
}

func TestScatterWithFit_TooFewPoints(t *testing.T) {
	var buf bytes.Buffer
	err := ScatterWithFit(&buf, stats.NewPairedSample("x", "y", []float64{1}, []float64{2}), stats.LinearFit{}, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
	assert.Zero(t, buf.Len())
}

func TestGroupBars(t *testing.T) {
	groups := []stats.GroupStats{
		{Label: "Laid", Count: 38, Mean: 12.63},
		{Label: "Hung", Count: 22, Mean: 7.5},
	}

	var buf bytes.Buffer
	require.NoError(t, GroupBars(&buf, "Mean runout (thou)", groups))

	_, err := png.Decode(&buf)
	assert.NoError(t, err)

	err = GroupBars(&buf, "empty", nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
