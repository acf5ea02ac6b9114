package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/solutions/engine"
)

func TestTrendChartPNG(t *testing.T) {
	rows := []engine.TrendRow{
		{Month: "2024-01", Value: 4, Cumulative: 4},
		{Month: "2024-02", Value: 2, Cumulative: 6},
		{Month: "2024-03", Value: 7, Cumulative: 13},
	}
	var buf bytes.Buffer
	require.NoError(t, TrendChart(&buf, rows, ""))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestRegionalAndProgressPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RegionalChart(&buf, []engine.RegionRow{
		{Region: "South", Beneficiaries: 5, Achieved: 2},
		{Region: "North", Beneficiaries: 3, Achieved: 3},
	}))
	assert.NotZero(t, buf.Len())

	buf.Reset()
	require.NoError(t, ProgressChart(&buf, []engine.ProgressRow{
		{Pathway: "Return", Assessment: 2, Planning: 1, Achieved: 1, Total: 4},
	}))
	assert.NotZero(t, buf.Len())
}

func TestPNGRejects(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, PNG(&buf, nil, DefaultWidth, DefaultHeight))
	assert.Error(t, TrendChart(&buf, nil, ""))
	assert.Error(t, PNG(&buf, &engine.ChartConfig{
		ChartType: "pie",
		Series:    []engine.ChartSeries{{Name: "x", Data: []engine.ChartPoint{{Label: "a", Value: 1}}}},
	}, DefaultWidth, DefaultHeight))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x27, G: 0xAE, B: 0x60, A: 255}, hexColor("#27AE60"))
	assert.Equal(t, color.RGBA{R: 0x7F, G: 0x8C, B: 0x8D, A: 255}, hexColor("teal"))
}
