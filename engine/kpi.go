package engine

import (
	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// KPI ENGINE — Named indicators over one view
// ============================================================================
// One pass over the view. Rates are fractions in [0, 1] and are 0 when the
// view is empty; avg_household_size is 0 for an empty view as well.
// ============================================================================

// KPIs holds the headline indicators of a record set.
type KPIs struct {
	TotalBeneficiaries     int `json:"total_beneficiaries"`
	TotalIndividuals       int `json:"total_individuals"`
	SolutionsAchieved      int `json:"solutions_achieved"`
	FemaleHoHCount         int `json:"female_hoh_count"`
	LivelihoodSupportCount int `json:"livelihood_support_count"`
	CompleteDocumentation  int `json:"complete_documentation"`
	RegionsCovered         int `json:"regions_covered"`
	DistrictsCovered       int `json:"districts_covered"`

	AchievementRate             float64 `json:"achievement_rate"`
	FemaleHoHPercentage         float64 `json:"female_hoh_percentage"`
	LivelihoodSupportPercentage float64 `json:"livelihood_support_percentage"`
	DocumentationRate           float64 `json:"documentation_rate"`
	AvgHouseholdSize            float64 `json:"avg_household_size"`

	// Categories counts records per label of every enumerated column,
	// Other included, so each column's counts sum to TotalBeneficiaries.
	Categories map[string]map[string]int `json:"categories"`
}

// ComputeKPIs computes the indicators of view.
func ComputeKPIs(view RecordView) KPIs {
	k := KPIs{Categories: make(map[string]map[string]int, len(schema.Enums))}
	for _, e := range schema.Enums {
		counts := make(map[string]int, len(e.Labels)+1)
		for _, l := range e.All() {
			counts[l] = 0
		}
		k.Categories[e.Column] = counts
	}

	regions := make(map[string]struct{})
	districts := make(map[string]struct{})

	n := view.Len()
	for i := 0; i < n; i++ {
		b := view.At(i)
		k.TotalIndividuals += b.TotalIndividuals
		if b.IsAchieved {
			k.SolutionsAchieved++
		}
		if b.IsFemaleHoH {
			k.FemaleHoHCount++
		}
		if b.HasLivelihoodSupport {
			k.LivelihoodSupportCount++
		}
		if b.HasDocumentation {
			k.CompleteDocumentation++
		}
		regions[b.Region] = struct{}{}
		districts[b.District] = struct{}{}
		for _, e := range schema.Enums {
			k.Categories[e.Column][b.Dimension(e.Column)]++
		}
	}

	k.TotalBeneficiaries = n
	k.RegionsCovered = len(regions)
	k.DistrictsCovered = len(districts)
	k.AchievementRate = ratio(k.SolutionsAchieved, n)
	k.FemaleHoHPercentage = ratio(k.FemaleHoHCount, n)
	k.LivelihoodSupportPercentage = ratio(k.LivelihoodSupportCount, n)
	k.DocumentationRate = ratio(k.CompleteDocumentation, n)
	k.AvgHouseholdSize = ratio(k.TotalIndividuals, n)
	return k
}

// Map flattens the indicators into name → value, including one
// "<label>_count"-style entry per enumerated label and "other_<column>".
func (k KPIs) Map() map[string]float64 {
	m := map[string]float64{
		"total_beneficiaries":           float64(k.TotalBeneficiaries),
		"total_individuals":             float64(k.TotalIndividuals),
		"solutions_achieved":            float64(k.SolutionsAchieved),
		"female_hoh_count":              float64(k.FemaleHoHCount),
		"livelihood_support_count":      float64(k.LivelihoodSupportCount),
		"complete_documentation":        float64(k.CompleteDocumentation),
		"regions_covered":               float64(k.RegionsCovered),
		"districts_covered":             float64(k.DistrictsCovered),
		"achievement_rate":              k.AchievementRate,
		"female_hoh_percentage":         k.FemaleHoHPercentage,
		"livelihood_support_percentage": k.LivelihoodSupportPercentage,
		"documentation_rate":            k.DocumentationRate,
		"avg_household_size":            k.AvgHouseholdSize,
	}
	for _, e := range schema.Enums {
		for _, l := range e.All() {
			m[e.KPIKey(l)] = float64(k.Categories[e.Column][l])
		}
	}
	return m
}

// Count returns the number of records carrying label in column.
func (k KPIs) Count(column, label string) int {
	return k.Categories[column][label]
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
