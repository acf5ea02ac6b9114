package engine

import (
	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from report rows
// ============================================================================

// TrendChart draws monthly values as bars with the running total as a line.
func TrendChart(rows []TrendRow, valueLabel string) *ChartConfig {
	if len(rows) == 0 {
		return nil
	}
	if valueLabel == "" {
		valueLabel = "Registrations"
	}
	monthly := make([]ChartPoint, 0, len(rows))
	cumulative := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		monthly = append(monthly, ChartPoint{Label: r.Month, Value: r.Value})
		cumulative = append(cumulative, ChartPoint{Label: r.Month, Value: r.Cumulative})
	}
	return &ChartConfig{
		ChartType: "bar_line",
		Title:     "Monthly Registration Trends",
		XAxis:     "Month",
		YAxis:     valueLabel,
		Series: []ChartSeries{
			{Name: valueLabel, Type: "bar", Data: monthly, Color: "#3498DB"},
			{Name: "Cumulative", Type: "line", Data: cumulative, Color: "#E74C3C"},
		},
		Colors:     []string{"#3498DB", "#E74C3C"},
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// RegionalChart compares beneficiaries and achieved solutions per region.
func RegionalChart(rows []RegionRow) *ChartConfig {
	if len(rows) == 0 {
		return nil
	}
	total := make([]ChartPoint, 0, len(rows))
	achieved := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		total = append(total, ChartPoint{Label: r.Region, Value: float64(r.Beneficiaries)})
		achieved = append(achieved, ChartPoint{Label: r.Region, Value: float64(r.Achieved)})
	}
	return &ChartConfig{
		ChartType: "bar",
		Title:     "Beneficiaries by Region",
		XAxis:     "Region",
		YAxis:     "Households",
		Series: []ChartSeries{
			{Name: "Beneficiaries", Data: total, Color: "#3498DB"},
			{Name: "Achieved", Data: achieved, Color: "#27AE60"},
		},
		Colors:     []string{"#3498DB", "#27AE60"},
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// ProgressChart stacks the stage counts of each pathway.
func ProgressChart(rows []ProgressRow) *ChartConfig {
	if len(rows) == 0 {
		return nil
	}
	stages := schema.StageEnum.Labels
	colors := Palette(schema.ColPathwayStage, stages)
	series := make([]ChartSeries, len(stages))
	for si, s := range stages {
		series[si] = ChartSeries{Name: s, Color: colors[si], Data: make([]ChartPoint, 0, len(rows))}
	}
	for _, r := range rows {
		for si, n := range r.Stages() {
			series[si].Data = append(series[si].Data, ChartPoint{Label: r.Pathway, Value: float64(n)})
		}
	}
	return &ChartConfig{
		ChartType:  "stacked_bar",
		Title:      "Pathway Progress by Stage",
		XAxis:      "Solutions Pathway",
		YAxis:      "Households",
		Series:     series,
		Colors:     colors,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// BreakdownChart is a pie of the category counts of one enumerated column.
// Labels with no records are left out.
func BreakdownChart(k KPIs, column string) *ChartConfig {
	e, ok := schema.EnumFor(column)
	if !ok {
		return nil
	}
	labels := e.All()
	colors := Palette(column, labels)
	points := make([]ChartPoint, 0, len(labels))
	used := make([]string, 0, len(labels))
	for i, l := range labels {
		n := k.Count(column, l)
		if n == 0 {
			continue
		}
		points = append(points, ChartPoint{Label: l, Value: float64(n), Color: colors[i]})
		used = append(used, colors[i])
	}
	if len(points) == 0 {
		return nil
	}
	return &ChartConfig{
		ChartType:  "pie",
		Title:      "Distribution by " + schema.DisplayName(column),
		Series:     []ChartSeries{{Name: schema.DisplayName(column), Data: points}},
		Colors:     used,
		ShowLegend: true,
	}
}
