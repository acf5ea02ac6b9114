package engine

import (
	"fmt"
	"strconv"
)

// Fallback colour for labels without a palette entry.
const Gray = "#7F8C8D"

// flowColors colour flow-graph nodes. Stages shade from light to dark grey
// with Achieved highlighted.
var flowColors = map[string]string{
	"IDP":               "#E74C3C",
	"Returnee":          "#3498DB",
	"Host Community":    "#2ECC71",
	"Return":            "#9B59B6",
	"Local Integration": "#F39C12",
	"Relocation":        "#1ABC9C",
	"Assessment":        "#BDC3C7",
	"Planning":          "#95A5A6",
	"Implementation":    "#7F8C8D",
	"Achieved":          "#27AE60",
}

// markerColors colour map markers and breakdown charts.
var markerColors = map[string]map[string]string{
	"solutions_pathway": {
		"Return":            "#9B59B6",
		"Local Integration": "#F39C12",
		"Relocation":        "#1ABC9C",
	},
	"displacement_status": {
		"IDP":            "#E74C3C",
		"Returnee":       "#3498DB",
		"Host Community": "#2ECC71",
	},
	"pathway_stage": {
		"Assessment":     "#BDC3C7",
		"Planning":       "#F39C12",
		"Implementation": "#3498DB",
		"Achieved":       "#27AE60",
	},
}

// defaultColors cycle for columns without a fixed palette.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// FlowColor returns the node colour of a flow label.
func FlowColor(label string) string {
	if c, ok := flowColors[label]; ok {
		return c
	}
	return Gray
}

// MarkerColor returns the colour of label when markers are coloured by column.
func MarkerColor(column, label string) string {
	if c, ok := markerColors[column][label]; ok {
		return c
	}
	return Gray
}

// Palette returns one colour per label: the fixed palette of column where it
// has one, the default cycle otherwise.
func Palette(column string, labels []string) []string {
	fixed, hasFixed := markerColors[column]
	out := make([]string, len(labels))
	for i, l := range labels {
		switch {
		case hasFixed:
			if c, ok := fixed[l]; ok {
				out[i] = c
			} else {
				out[i] = Gray
			}
		default:
			out[i] = defaultColors[i%len(defaultColors)]
		}
	}
	return out
}

// Translucent turns "#RRGGBB" into an rgba() colour with the given opacity.
func Translucent(hex string, alpha float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		hex = Gray
	}
	var rgb [3]int64
	for i := range rgb {
		v, err := strconv.ParseInt(hex[1+2*i:3+2*i], 16, 64)
		if err != nil {
			return Translucent(Gray, alpha)
		}
		rgb[i] = v
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", rgb[0], rgb[1], rgb[2], alpha)
}
