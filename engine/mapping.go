package engine

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// MAP LAYER — Markers, heat points and region bubbles
// ============================================================================
// Records without both coordinates are skipped and counted. Geometry is kept
// as X = longitude, Y = latitude.
// ============================================================================

// DefaultMapColumn colours markers when no column is chosen.
const DefaultMapColumn = schema.ColSolutionsPathway

// DefaultCenter is used when no record in the view has coordinates.
var DefaultCenter = LatLon{Lat: 5.1521, Lon: 46.1996}

// LatLon is a map position.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the bounding box of a layer.
type Bounds struct {
	SouthWest LatLon `json:"south_west"`
	NorthEast LatLon `json:"north_east"`
}

// Marker is one household on the map.
type Marker struct {
	LatLon
	ID                 string `json:"beneficiary_id"`
	Color              string `json:"color"`
	Category           string `json:"category"`
	Region             string `json:"region"`
	District           string `json:"district"`
	DisplacementStatus string `json:"displacement_status"`
	SolutionsPathway   string `json:"solutions_pathway"`
	PathwayStage       string `json:"pathway_stage"`
	HouseholdSize      int    `json:"household_size"`
	GenderHoH          string `json:"gender_hoh"`
}

// LegendItem pairs a category with its marker colour.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// MapData is a render-ready marker layer.
type MapData struct {
	ColorBy string       `json:"color_by"`
	Title   string       `json:"title"`
	Markers []Marker     `json:"markers"`
	Legend  []LegendItem `json:"legend"`
	Center  LatLon       `json:"center"`
	Bounds  *Bounds      `json:"bounds,omitempty"`
	Skipped int          `json:"skipped"` // records without coordinates
}

// MapLayer builds one marker per located record, coloured by a categorical
// column. The centre is the mean position of the markers.
func MapLayer(view RecordView, colorBy string) (*MapData, error) {
	if colorBy == "" {
		colorBy = DefaultMapColumn
	}
	if !schema.IsCategorical(colorBy) {
		return nil, fmt.Errorf("map colour column %q is not categorical", colorBy)
	}

	layer := &MapData{ColorBy: colorBy, Title: titleKey(colorBy), Markers: []Marker{}}
	layer.Legend = legendFor(view, colorBy)
	colors := make(map[string]string, len(layer.Legend))
	for _, item := range layer.Legend {
		colors[item.Label] = item.Color
	}

	flat := make([]float64, 0, 2*view.Len())
	for i := 0; i < view.Len(); i++ {
		b := view.At(i)
		if !b.HasLocation() {
			layer.Skipped++
			continue
		}
		category := b.Dimension(colorBy)
		color, ok := colors[category]
		if !ok {
			color = Gray
		}
		layer.Markers = append(layer.Markers, Marker{
			ID:                 b.ID,
			LatLon:             LatLon{Lat: *b.Latitude, Lon: *b.Longitude},
			Color:              color,
			Category:           category,
			Region:             b.Region,
			District:           b.District,
			DisplacementStatus: string(b.DisplacementStatus),
			SolutionsPathway:   string(b.SolutionsPathway),
			PathwayStage:       string(b.PathwayStage),
			HouseholdSize:      b.HouseholdSize,
			GenderHoH:          string(b.GenderHoH),
		})
		flat = append(flat, *b.Longitude, *b.Latitude)
	}

	layer.Center, layer.Bounds = extent(flat)
	return layer, nil
}

// legendFor lists the palette of column. Columns with a fixed palette list
// every palette entry in enumeration order; others list the values present.
func legendFor(view RecordView, column string) []LegendItem {
	var labels []string
	if _, fixed := markerColors[column]; fixed {
		e, _ := schema.EnumFor(column)
		labels = e.Labels
	} else {
		labels = UniqueValues(view, column)
	}
	colors := Palette(column, labels)
	items := make([]LegendItem, len(labels))
	for i, l := range labels {
		items[i] = LegendItem{Label: l, Color: colors[i]}
	}
	return items
}

// extent returns the centroid and bounds of flat XY coordinates.
func extent(flat []float64) (LatLon, *Bounds) {
	if len(flat) == 0 {
		return DefaultCenter, nil
	}
	mp := geom.NewMultiPointFlat(geom.XY, flat)
	c := xy.MultiPointCentroid(mp)
	b := mp.Bounds()
	return LatLon{Lat: c.Y(), Lon: c.X()}, &Bounds{
		SouthWest: LatLon{Lat: b.Min(1), Lon: b.Min(0)},
		NorthEast: LatLon{Lat: b.Max(1), Lon: b.Max(0)},
	}
}

// ============================================================================
// HEAT POINTS
// ============================================================================

// HeatPoint is a weighted position for density rendering.
type HeatPoint struct {
	LatLon
	Weight float64 `json:"weight"`
}

// HeatPoints returns one point per located record. An empty weightColumn
// weighs every record 1.
func HeatPoints(view RecordView, weightColumn string) ([]HeatPoint, error) {
	if weightColumn != "" && !schema.IsMeasure(weightColumn) {
		return nil, fmt.Errorf("heat weight column %q is not numeric", weightColumn)
	}
	points := make([]HeatPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		b := view.At(i)
		if !b.HasLocation() {
			continue
		}
		w := 1.0
		if weightColumn != "" {
			w = b.Measure(weightColumn)
		}
		points = append(points, HeatPoint{LatLon: LatLon{Lat: *b.Latitude, Lon: *b.Longitude}, Weight: w})
	}
	return points, nil
}

// ============================================================================
// REGION BUBBLES
// ============================================================================

// Bubble is one region drawn at the mean position of its households.
type Bubble struct {
	Region string `json:"region"`
	LatLon
	Value  int     `json:"value"`
	Radius float64 `json:"radius"`
}

// RegionBubbles sizes one circle per located region by beneficiary count,
// radius 20 to 60.
func RegionBubbles(view RecordView) []Bubble {
	var bubbles []Bubble
	largest := 0
	for _, g := range GroupBy(view, schema.ColRegion) {
		flat := make([]float64, 0, 2*g.Count)
		for i := 0; i < g.View.Len(); i++ {
			if b := g.View.At(i); b.HasLocation() {
				flat = append(flat, *b.Longitude, *b.Latitude)
			}
		}
		if len(flat) == 0 {
			continue
		}
		center, _ := extent(flat)
		bubbles = append(bubbles, Bubble{Region: g.Key, LatLon: center, Value: g.Count})
		if g.Count > largest {
			largest = g.Count
		}
	}
	for i := range bubbles {
		bubbles[i].Radius = 20 + float64(bubbles[i].Value)/float64(largest)*40
	}
	return bubbles
}
