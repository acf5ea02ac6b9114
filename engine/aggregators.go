package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// AGGREGATORS — Grouped reports via RecordView
// ============================================================================
// All functions operate on RecordView without copying the dataset.
// Grouping produces SubViews (index lists into parent view).
//
// Percentages in report rows are 0–100 rounded to one decimal, half to even.
// ============================================================================

// ============================================================================
// GROUPING
// ============================================================================

// GroupBy partitions view by the values of a column, in first-seen order.
func GroupBy(view RecordView, column string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, column)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			Count: len(grouped[key]),
			Value: float64(len(grouped[key])),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// CountWhere counts records satisfying pred.
func CountWhere(view RecordView, pred func(*schema.Beneficiary) bool) int {
	n := 0
	for i := 0; i < view.Len(); i++ {
		if pred(view.At(i)) {
			n++
		}
	}
	return n
}

// ============================================================================
// REGIONAL SUMMARY
// ============================================================================

// RegionRow summarises one region.
type RegionRow struct {
	Region            string  `json:"region"`
	Beneficiaries     int     `json:"beneficiaries"`
	Individuals       int     `json:"individuals"`
	FemaleHoH         int     `json:"female_hoh"`
	Achieved          int     `json:"achieved"`
	LivelihoodSupport int     `json:"livelihood_support"`
	AchievementRate   float64 `json:"achievement_rate"`
	FemaleHoHRate     float64 `json:"female_hoh_rate"`
}

// RegionalSummary returns one row per region present in view, largest
// first; equal counts are ordered by region name.
func RegionalSummary(view RecordView) []RegionRow {
	groups := GroupBy(view, schema.ColRegion)
	rows := make([]RegionRow, 0, len(groups))
	for _, g := range groups {
		row := RegionRow{Region: g.Key, Beneficiaries: g.Count}
		for i := 0; i < g.View.Len(); i++ {
			b := g.View.At(i)
			row.Individuals += b.HouseholdSize
			if b.IsFemaleHoH {
				row.FemaleHoH++
			}
			if b.IsAchieved {
				row.Achieved++
			}
			if b.HasLivelihoodSupport {
				row.LivelihoodSupport++
			}
		}
		row.AchievementRate = percent(row.Achieved, row.Beneficiaries)
		row.FemaleHoHRate = percent(row.FemaleHoH, row.Beneficiaries)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Beneficiaries != rows[j].Beneficiaries {
			return rows[i].Beneficiaries > rows[j].Beneficiaries
		}
		return rows[i].Region < rows[j].Region
	})
	return rows
}

// ============================================================================
// MONTHLY TREND
// ============================================================================

// TrendOptions controls MonthlyTrend.
type TrendOptions struct {
	// ValueColumn is summed per month; empty counts records.
	ValueColumn string `json:"value_column,omitempty"`
	// FillGaps adds zero rows for months without registrations between the
	// first and last month present.
	FillGaps bool `json:"fill_gaps,omitempty"`
}

// TrendRow is one registration month.
type TrendRow struct {
	Month      string  `json:"month"`
	Value      float64 `json:"value"`
	Cumulative float64 `json:"cumulative"`
}

// MonthlyTrend returns one row per month present in view, ascending, with the
// running total.
func MonthlyTrend(view RecordView, opts TrendOptions) ([]TrendRow, error) {
	if opts.ValueColumn != "" && !schema.IsMeasure(opts.ValueColumn) {
		return nil, fmt.Errorf("trend value column %q is not numeric", opts.ValueColumn)
	}

	totals := make(map[string]float64)
	for i := 0; i < view.Len(); i++ {
		b := view.At(i)
		if opts.ValueColumn == "" {
			totals[b.RegistrationMonth]++
		} else {
			totals[b.RegistrationMonth] += b.Measure(opts.ValueColumn)
		}
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	// YYYY-MM keys sort chronologically as strings.
	sort.Strings(months)

	if opts.FillGaps && len(months) > 1 {
		months = monthRange(months[0], months[len(months)-1])
	}

	rows := make([]TrendRow, 0, len(months))
	var running float64
	for _, m := range months {
		running += totals[m]
		rows = append(rows, TrendRow{Month: m, Value: totals[m], Cumulative: running})
	}
	return rows, nil
}

// monthRange lists every YYYY-MM key from first to last inclusive.
func monthRange(first, last string) []string {
	start, err := schema.ParseMonth(first)
	if err != nil {
		return []string{first, last}
	}
	end, err := schema.ParseMonth(last)
	if err != nil {
		return []string{first, last}
	}
	var out []string
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		out = append(out, schema.MonthOf(t))
	}
	return out
}

// ============================================================================
// PATHWAY PROGRESS
// ============================================================================

// ProgressRow is the stage breakdown of one pathway.
type ProgressRow struct {
	Pathway         string  `json:"pathway"`
	Assessment      int     `json:"assessment"`
	Planning        int     `json:"planning"`
	Implementation  int     `json:"implementation"`
	Achieved        int     `json:"achieved"`
	Total           int     `json:"total"`
	AchievementRate float64 `json:"achievement_rate"`
}

// Stages returns the four stage counts in stage order.
func (r ProgressRow) Stages() []int {
	return []int{r.Assessment, r.Planning, r.Implementation, r.Achieved}
}

// PathwayProgress returns one row per pathway present in view, in pathway
// order. Records whose stage is Other count towards no column and not towards
// Total.
func PathwayProgress(view RecordView) []ProgressRow {
	groups := GroupBy(view, schema.ColSolutionsPathway)
	rows := make([]ProgressRow, 0, len(groups))
	for _, g := range groups {
		row := ProgressRow{Pathway: g.Key}
		for i := 0; i < g.View.Len(); i++ {
			switch g.View.At(i).PathwayStage {
			case schema.StageAssessment:
				row.Assessment++
			case schema.StagePlanning:
				row.Planning++
			case schema.StageImplementation:
				row.Implementation++
			case schema.StageAchieved:
				row.Achieved++
			}
		}
		row.Total = row.Assessment + row.Planning + row.Implementation + row.Achieved
		row.AchievementRate = percent(row.Achieved, row.Total)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := schema.PathwayEnum.Rank(rows[i].Pathway), schema.PathwayEnum.Rank(rows[j].Pathway)
		if ri != rj {
			return ri < rj
		}
		return rows[i].Pathway < rows[j].Pathway
	})
	return rows
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// percent returns num/den as a 0–100 percentage rounded to one decimal.
func percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round1(float64(num) / float64(den) * 100)
}

// round1 rounds to one decimal place, half to even.
func round1(v float64) float64 {
	return decimal.NewFromFloat(v).RoundBank(1).InexactFloat64()
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatPercent formats a fraction in [0, 1] as "61.5%".
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", round1(fraction*100))
}

// FormatNumber prints whole numbers without decimals and others with one.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return FormatInt(int(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// UniqueValues returns the distinct non-empty values of a column, sorted.
func UniqueValues(view RecordView, column string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, column)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	sort.Strings(result)
	return result
}
