package engine

import (
	"fmt"
	"strconv"

	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from report rows
// ============================================================================
// One builder per report. The CLI prints these, the CSV exporter writes them
// and the HTTP API returns them next to the typed rows.
// ============================================================================

func textCol(key, label string) Column {
	return Column{Key: key, Label: label, Type: "text", Align: "left"}
}

func numberCol(key, label string) Column {
	return Column{Key: key, Label: label, Type: "number", Align: "right"}
}

func percentCol(key, label string) Column {
	return Column{Key: key, Label: label, Type: "percent", Align: "right"}
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

// ============================================================================
// REPORT TABLES
// ============================================================================

// RegionalTable renders RegionalSummary rows.
func RegionalTable(rows []RegionRow) *TableData {
	t := &TableData{
		Title: "Regional Summary",
		Columns: []Column{
			textCol("region", "Region"),
			numberCol("beneficiaries", "Beneficiaries"),
			numberCol("individuals", "Individuals"),
			numberCol("female_hoh", "Female HoH"),
			numberCol("achieved", "Achieved"),
			numberCol("livelihood_support", "Livelihood Support"),
			percentCol("achievement_rate", "Achievement Rate (%)"),
			percentCol("female_hoh_rate", "Female HoH Rate (%)"),
		},
		Rows: make([][]string, 0, len(rows)),
	}
	var beneficiaries, individuals int
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Region, itoa(r.Beneficiaries), itoa(r.Individuals), itoa(r.FemaleHoH),
			itoa(r.Achieved), itoa(r.LivelihoodSupport), ftoa1(r.AchievementRate), ftoa1(r.FemaleHoHRate),
		})
		beneficiaries += r.Beneficiaries
		individuals += r.Individuals
	}
	t.Summary = &Summary{
		Label: fmt.Sprintf("Total (%d regions)", len(rows)),
		Values: map[string]string{
			"beneficiaries": FormatInt(beneficiaries),
			"individuals":   FormatInt(individuals),
		},
	}
	return t
}

// ProgressTable renders PathwayProgress rows.
func ProgressTable(rows []ProgressRow) *TableData {
	t := &TableData{
		Title:   "Pathway Progress",
		Columns: []Column{textCol("pathway", "Solutions Pathway")},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, s := range schema.StageEnum.Labels {
		t.Columns = append(t.Columns, numberCol(toKey(s), s))
	}
	t.Columns = append(t.Columns, numberCol("total", "Total"), percentCol("achievement_rate", "Achievement Rate"))

	for _, r := range rows {
		row := []string{r.Pathway}
		for _, n := range r.Stages() {
			row = append(row, itoa(n))
		}
		row = append(row, itoa(r.Total), ftoa1(r.AchievementRate))
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TrendTable renders MonthlyTrend rows. valueLabel names the value column.
func TrendTable(rows []TrendRow, valueLabel string) *TableData {
	if valueLabel == "" {
		valueLabel = "Registrations"
	}
	t := &TableData{
		Title: "Monthly Trends",
		Columns: []Column{
			textCol("month", "Month"),
			numberCol("value", valueLabel),
			numberCol("cumulative", "Cumulative"),
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Month, FormatNumber(r.Value), FormatNumber(r.Cumulative)})
	}
	return t
}

// kpiOrder is the display order of KPI names.
var kpiOrder = []string{
	"total_beneficiaries", "total_individuals", "solutions_achieved", "achievement_rate",
	"female_hoh_count", "female_hoh_percentage", "livelihood_support_count",
	"livelihood_support_percentage", "complete_documentation", "documentation_rate",
	"avg_household_size", "regions_covered", "districts_covered",
}

// KPINames returns every KPI name in display order: headline indicators
// first, then per-category counts column by column.
func KPINames() []string {
	names := append([]string(nil), kpiOrder...)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, e := range schema.Enums {
		for _, l := range e.All() {
			if k := e.KPIKey(l); !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	return names
}

// KPITable renders KPIs as Indicator / Value pairs.
func KPITable(k KPIs) *TableData {
	values := k.Map()
	t := &TableData{
		Title:   "KPIs",
		Columns: []Column{textCol("indicator", "Indicator"), numberCol("value", "Value")},
	}
	for _, name := range KPINames() {
		t.Rows = append(t.Rows, []string{name, formatKPI(name, values[name])})
	}
	return t
}

func formatKPI(name string, v float64) string {
	switch name {
	case "achievement_rate", "female_hoh_percentage", "livelihood_support_percentage", "documentation_rate":
		return strconv.FormatFloat(v, 'f', 4, 64)
	case "avg_household_size":
		return ftoa1(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IndicatorTable renders indicator progress.
func IndicatorTable(items []IndicatorProgress) *TableData {
	t := &TableData{
		Title: "Key Indicators Progress",
		Columns: []Column{
			textCol("group", "Group"),
			textCol("title", "Indicator"),
			numberCol("current", "Current"),
			numberCol("target", "Target"),
			percentCol("progress", "Progress (%)"),
		},
	}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{
			it.Group, it.Title, FormatNumber(round1(it.Current)), FormatNumber(it.Target), ftoa1(it.Progress * 100),
		})
	}
	return t
}

// ComparisonTable renders a period comparison.
func ComparisonTable(c Comparison) *TableData {
	t := &TableData{
		Title: fmt.Sprintf("Period Comparison: %s vs %s", c.Current.Period, c.Previous.Period),
		Columns: []Column{
			textCol("metric", "Metric"),
			numberCol("current", "Current"),
			numberCol("previous", "Previous"),
			numberCol("change", "Change"),
			percentCol("change_percent", "Change (%)"),
		},
	}
	add := func(label string, cur, prev, change int, pct float64) {
		t.Rows = append(t.Rows, []string{label, itoa(cur), itoa(prev), fmt.Sprintf("%+d", change), ftoa1(pct)})
	}
	add("Beneficiaries", c.Current.Beneficiaries, c.Previous.Beneficiaries, c.BeneficiaryChange, c.BeneficiaryChangePercent)
	add("Solutions Achieved", c.Current.Achieved, c.Previous.Achieved, c.AchievedChange, c.AchievedChangePercent)
	add("Individuals", c.Current.Individuals, c.Previous.Individuals, c.IndividualsChange, c.IndividualsChangePercent)
	return t
}

// FlowTable renders flow edges as Source / Target / Count.
func FlowTable(g *Graph) *TableData {
	t := &TableData{
		Title: "Beneficiary Flow",
		Columns: []Column{
			textCol("source", "Source"),
			textCol("target", "Target"),
			numberCol("value", "Households"),
		},
	}
	for _, e := range g.Edges {
		src, dst := g.Nodes[e.Source], g.Nodes[e.Target]
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%s: %s", schema.DisplayName(src.Column), src.Label),
			fmt.Sprintf("%s: %s", schema.DisplayName(dst.Column), dst.Label),
			itoa(e.Value),
		})
	}
	return t
}

// RecordsTable lists the source columns of every record in view.
func RecordsTable(view RecordView) *TableData {
	cols := schema.SourceColumns()
	t := &TableData{
		Title:   "Raw Data",
		Columns: make([]Column, 0, len(cols)),
		Rows:    make([][]string, 0, view.Len()),
	}
	for _, c := range cols {
		if schema.IsMeasure(c) {
			t.Columns = append(t.Columns, numberCol(c, c))
		} else {
			t.Columns = append(t.Columns, textCol(c, c))
		}
	}
	for i := 0; i < view.Len(); i++ {
		t.Rows = append(t.Rows, view.At(i).Row())
	}
	t.Summary = &Summary{
		Label:  fmt.Sprintf("Total (%d records)", view.Len()),
		Values: map[string]string{schema.ColHouseholdSize: FormatInt(int(SumMeasure(view, schema.ColHouseholdSize)))},
	}
	return t
}

// toKey turns a label into a snake_case key.
func toKey(label string) string {
	out := make([]byte, 0, len(label))
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c == ' ' || c == '-':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
