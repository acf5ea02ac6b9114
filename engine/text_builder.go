package engine

import (
	"fmt"
	"math"
)

// ============================================================================
// TEXT BUILDER — Headline summary with month-over-month growth
// ============================================================================

// BuildText produces the headline for a filtered view: the household count,
// the period covered and the change between the last two trend months.
func BuildText(view RecordView, trend []TrendRow, sel Selection) *TextData {
	td := &TextData{
		Value:    FormatInt(view.Len()),
		RawValue: float64(view.Len()),
		Unit:     "households",
		Period:   DerivePeriod(trend),
		Count:    view.Len(),
		Filters:  sel.ActiveLabels(),
	}
	td.Growth = BuildGrowth(trend)
	return td
}

// BuildGrowth compares the latest trend month with the one before it.
func BuildGrowth(trend []TrendRow) *GrowthData {
	switch len(trend) {
	case 0:
		return nil
	case 1:
		return &GrowthData{
			EarliestValue:  trend[0].Value,
			LatestValue:    trend[0].Value,
			EarliestPeriod: trend[0].Month,
			LatestPeriod:   trend[0].Month,
			Direction:      "insufficient data",
		}
	}

	earlier := trend[len(trend)-2]
	latest := trend[len(trend)-1]

	changeAmount := latest.Value - earlier.Value
	var changePercent float64
	if earlier.Value != 0 {
		changePercent = round1(changeAmount / earlier.Value * 100)
	}

	direction := "unchanged"
	if changePercent > 0.5 {
		direction = "increased"
	} else if changePercent < -0.5 {
		direction = "decreased"
	}

	return &GrowthData{
		EarliestValue:  earlier.Value,
		LatestValue:    latest.Value,
		EarliestPeriod: earlier.Month,
		LatestPeriod:   latest.Month,
		ChangeAmount:   changeAmount,
		ChangePercent:  changePercent,
		Direction:      direction,
	}
}

// Sentence renders the headline as one line of text.
func (td *TextData) Sentence() string {
	if td.Count == 0 {
		return "No beneficiaries match the current filters."
	}
	s := fmt.Sprintf("%s %s registered over %s.", td.Value, td.Unit, td.Period)
	if g := td.Growth; g != nil && g.Direction != "insufficient data" {
		switch g.Direction {
		case "increased":
			s += fmt.Sprintf(" Registrations ↑ %.1f%% in %s vs %s.", g.ChangePercent, g.LatestPeriod, g.EarliestPeriod)
		case "decreased":
			s += fmt.Sprintf(" Registrations ↓ %.1f%% in %s vs %s.", math.Abs(g.ChangePercent), g.LatestPeriod, g.EarliestPeriod)
		default:
			s += fmt.Sprintf(" Registrations unchanged in %s vs %s.", g.LatestPeriod, g.EarliestPeriod)
		}
	}
	return s
}

// DerivePeriod builds a human-readable period string from trend rows.
func DerivePeriod(trend []TrendRow) string {
	switch len(trend) {
	case 0:
		return "No data"
	case 1:
		return trend[0].Month
	}
	return fmt.Sprintf("%s – %s", trend[0].Month, trend[len(trend)-1].Month)
}
