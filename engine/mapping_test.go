package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/solutions/schema"
)

func TestMapLayer(t *testing.T) {
	view := viewOf(
		rec(located(2, 44), pathway(schema.PathwayReturn)),
		rec(located(4, 46), pathway(schema.PathwayRelocation)),
		rec(pathway(schema.PathwayReturn)),
	)
	layer, err := MapLayer(view, "")
	require.NoError(t, err)

	assert.Equal(t, schema.ColSolutionsPathway, layer.ColorBy)
	assert.Equal(t, "Solutions Pathway", layer.Title)
	require.Len(t, layer.Markers, 2)
	assert.Equal(t, 1, layer.Skipped)
	assert.Equal(t, "#9B59B6", layer.Markers[0].Color)
	assert.Equal(t, "#1ABC9C", layer.Markers[1].Color)
	assert.Equal(t, 2.0, layer.Markers[0].Lat)

	var flat map[string]any
	out, err := json.Marshal(layer.Markers[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &flat))
	assert.Equal(t, 2.0, flat["lat"])
	assert.Equal(t, 44.0, flat["lon"])
	assert.Equal(t, "Return", flat["solutions_pathway"])

	assert.InDelta(t, 3.0, layer.Center.Lat, 1e-9)
	assert.InDelta(t, 45.0, layer.Center.Lon, 1e-9)
	require.NotNil(t, layer.Bounds)
	assert.Equal(t, LatLon{Lat: 2, Lon: 44}, layer.Bounds.SouthWest)
	assert.Equal(t, LatLon{Lat: 4, Lon: 46}, layer.Bounds.NorthEast)

	require.Len(t, layer.Legend, 3)
	assert.Equal(t, LegendItem{Label: "Local Integration", Color: "#F39C12"}, layer.Legend[1])
}

func TestMapLayerOtherAndFreeColumns(t *testing.T) {
	view := viewOf(
		rec(located(1, 45), pathway(schema.Pathway(schema.Other)), region("Bay", "B1")),
		rec(located(1, 45), region("Gedo", "G1")),
	)
	layer, err := MapLayer(view, schema.ColSolutionsPathway)
	require.NoError(t, err)
	assert.Equal(t, Gray, layer.Markers[0].Color)

	layer, err = MapLayer(view, schema.ColRegion)
	require.NoError(t, err)
	assert.Equal(t, []LegendItem{{Label: "Bay", Color: "#4F46E5"}, {Label: "Gedo", Color: "#10B981"}}, layer.Legend)
	assert.Equal(t, "#10B981", layer.Markers[1].Color)

	_, err = MapLayer(view, schema.ColHouseholdSize)
	assert.Error(t, err)
}

func TestMapLayerWithoutCoordinates(t *testing.T) {
	layer, err := MapLayer(viewOf(rec(), rec()), schema.ColPathwayStage)
	require.NoError(t, err)
	assert.Empty(t, layer.Markers)
	assert.Equal(t, 2, layer.Skipped)
	assert.Equal(t, DefaultCenter, layer.Center)
	assert.Nil(t, layer.Bounds)
}

func TestHeatPoints(t *testing.T) {
	view := viewOf(rec(located(2, 44), size(7)), rec(size(3)))
	points, err := HeatPoints(view, schema.ColHouseholdSize)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 7.0, points[0].Weight)

	points, err = HeatPoints(view, "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, points[0].Weight)

	_, err = HeatPoints(view, schema.ColRegion)
	assert.Error(t, err)
}

func TestRegionBubbles(t *testing.T) {
	view := viewOf(
		rec(region("North", "N1"), located(10, 45)),
		rec(region("North", "N1"), located(12, 47)),
		rec(region("South", "S1"), located(0, 42)),
		rec(region("West", "W1")),
	)
	bubbles := RegionBubbles(view)
	require.Len(t, bubbles, 2)

	assert.Equal(t, "North", bubbles[0].Region)
	assert.Equal(t, 60.0, bubbles[0].Radius)
	assert.InDelta(t, 11.0, bubbles[0].Lat, 1e-9)
	assert.Equal(t, 40.0, bubbles[1].Radius)

	assert.Empty(t, RegionBubbles(viewOf()))
}
