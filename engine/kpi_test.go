package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/solutions/schema"
)

func TestComputeKPIsTenRecordsSixAchieved(t *testing.T) {
	var records []schema.Beneficiary
	for i := 0; i < 10; i++ {
		s := schema.StagePlanning
		if i < 6 {
			s = schema.StageAchieved
		}
		records = append(records, rec(stage(s)))
	}

	k := ComputeKPIs(viewOf(records...))
	assert.Equal(t, 10, k.TotalBeneficiaries)
	assert.Equal(t, 6, k.SolutionsAchieved)
	assert.InDelta(t, 0.6, k.AchievementRate, 1e-9)
	assert.Equal(t, "60.0%", FormatPercent(k.AchievementRate))
}

func TestComputeKPIsEmptyView(t *testing.T) {
	k := ComputeKPIs(viewOf())
	assert.Zero(t, k.TotalBeneficiaries)
	assert.Zero(t, k.TotalIndividuals)
	assert.Zero(t, k.AchievementRate)
	assert.Zero(t, k.FemaleHoHPercentage)
	assert.Zero(t, k.LivelihoodSupportPercentage)
	assert.Zero(t, k.DocumentationRate)
	assert.Zero(t, k.AvgHouseholdSize)
	assert.Zero(t, k.RegionsCovered)

	for _, e := range schema.Enums {
		for _, l := range e.All() {
			assert.Zero(t, k.Count(e.Column, l))
		}
	}
}

func TestComputeKPIsCounts(t *testing.T) {
	view := viewOf(
		rec(region("North", "N1"), size(3), female(), stage(schema.StageAchieved)),
		rec(region("North", "N2"), size(5)),
		rec(region("South", "N1"), size(4), female(), func(b *schema.Beneficiary) {
			b.LivelihoodSupport = schema.LivelihoodYes
			b.DocumentationStatus = schema.DocumentationComplete
		}),
	)
	k := ComputeKPIs(view)

	assert.Equal(t, 12, k.TotalIndividuals)
	assert.Equal(t, 2, k.FemaleHoHCount)
	assert.Equal(t, 1, k.LivelihoodSupportCount)
	assert.Equal(t, 1, k.CompleteDocumentation)
	assert.Equal(t, 2, k.RegionsCovered)
	assert.Equal(t, 2, k.DistrictsCovered, "district names count once across regions")
	assert.InDelta(t, 4.0, k.AvgHouseholdSize, 1e-9)
	assert.InDelta(t, 2.0/3.0, k.FemaleHoHPercentage, 1e-9)
}

func TestComputeKPIsRatesWithinUnitInterval(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		view := NewRecordsView(generate(int(seed)*7, seed))
		k := ComputeKPIs(view)
		for name, v := range map[string]float64{
			"achievement_rate":              k.AchievementRate,
			"female_hoh_percentage":         k.FemaleHoHPercentage,
			"livelihood_support_percentage": k.LivelihoodSupportPercentage,
			"documentation_rate":            k.DocumentationRate,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
	}
}

func TestCategoryPartitionIsComplete(t *testing.T) {
	view := NewRecordsView(generate(300, 11))
	k := ComputeKPIs(view)

	for _, e := range schema.Enums {
		sum := 0
		for _, l := range e.All() {
			sum += k.Count(e.Column, l)
		}
		assert.Equal(t, view.Len(), sum, e.Column)

		// Filtering on each label partitions the view the same way.
		sum = 0
		for _, l := range e.All() {
			var sel Selection
			if sel.Set(e.Column, l) != nil {
				continue
			}
			n := Apply(view, sel).Len()
			assert.Equal(t, k.Count(e.Column, l), n, "%s=%s", e.Column, l)
			sum += n
		}
		assert.Equal(t, view.Len(), sum, e.Column)
	}
}

func TestKPIMapIncludesCategoryKeys(t *testing.T) {
	view := viewOf(
		rec(status(schema.IDP)),
		rec(status(schema.Returnee)),
		rec(status(schema.DisplacementStatus(schema.Other))),
	)
	m := ComputeKPIs(view).Map()

	assert.Equal(t, 3.0, m["total_beneficiaries"])
	assert.Equal(t, 1.0, m[schema.DisplacementEnum.KPIKey(string(schema.IDP))])
	assert.Equal(t, 1.0, m[schema.DisplacementEnum.KPIKey(schema.Other)])
	assert.Equal(t, 0.0, m[schema.DisplacementEnum.KPIKey(string(schema.HostCommunity))])

	for _, name := range KPINames() {
		_, ok := m[name]
		require.True(t, ok, name)
	}
}
