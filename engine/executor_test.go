package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spektr-org/solutions/schema"
)

func TestComputeFullView(t *testing.T) {
	view := NewRecordsView(generate(200, 42))
	d, err := Compute(view, Selection{}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, 200, d.Total)
	assert.Equal(t, 200, d.Matched)
	assert.Empty(t, d.ActiveFilters)
	assert.Equal(t, 200, d.KPIs.TotalBeneficiaries)
	assert.Len(t, d.Indicators, len(DefaultTargets))
	assert.Equal(t, DefaultChainedFlow, d.Flow.Columns)
	assert.Equal(t, 200, d.Flow.Total())
	assert.Nil(t, d.Comparison)
	assert.Equal(t, "Registrations", d.TrendLabel)
	for _, key := range []string{"trend", "regions", "progress", "pathway", "displacement"} {
		assert.NotNil(t, d.Charts[key], key)
	}
	assert.Equal(t, 200.0, d.Trend[len(d.Trend)-1].Cumulative)
}

func TestComputeEmptySelectionResult(t *testing.T) {
	view := viewOf(rec(region("North", "N1")), rec(region("South", "S1")))
	d, err := Compute(view, Selection{Region: "Nowhere"})
	require.NoError(t, err)

	assert.Equal(t, 2, d.Total)
	assert.Zero(t, d.Matched)
	assert.Zero(t, d.KPIs.TotalBeneficiaries)
	assert.Zero(t, d.KPIs.AchievementRate)
	assert.Empty(t, d.Regions)
	assert.Empty(t, d.Trend)
	assert.Empty(t, d.Progress)
	assert.Empty(t, d.Flow.Nodes)
	assert.Empty(t, d.Map.Markers)
	assert.Nil(t, d.Charts["trend"])
	assert.Equal(t, "No beneficiaries match the current filters.", d.Text.Sentence())

	for _, report := range []string{ReportRegions, ReportProgress, ReportTrends, ReportFlow} {
		tbl, err := d.Table(report)
		require.NoError(t, err)
		assert.Empty(t, tbl.Rows, report)
	}
}

func TestComputeQuickFilterAndOptions(t *testing.T) {
	view := viewOf(
		rec(stage(schema.StageAchieved), size(2)),
		rec(stage(schema.StageAchieved), size(6)),
		rec(stage(schema.StagePlanning)),
	)
	d, err := Compute(view, Selection{}, WithQuickFilter(QuickAchieved),
		WithTrend(TrendOptions{ValueColumn: schema.ColHouseholdSize}),
		WithFlowColumns(DefaultSimpleFlow...),
		WithMapColumn(schema.ColPathwayStage),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Matched)
	assert.Equal(t, []string{"Pathway Stage: Achieved"}, d.ActiveFilters)
	assert.Equal(t, 1.0, d.KPIs.AchievementRate)
	assert.Equal(t, "Household Size", d.TrendLabel)
	assert.Equal(t, 8.0, d.Trend[0].Value)
	assert.Len(t, d.Flow.Columns, 2)
	assert.Equal(t, schema.ColPathwayStage, d.Map.ColorBy)
}

func TestComputeComparesPeriods(t *testing.T) {
	view := viewOf(
		rec(registered(2024, 1, 15)),
		rec(registered(2024, 2, 10)),
		rec(registered(2024, 2, 12)),
	)
	sel := Selection{Dates: DateRange{Start: day(2024, 2, 1), End: day(2024, 2, 29)}}
	d, err := Compute(view, sel)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Matched)
	require.NotNil(t, d.Comparison)
	assert.Equal(t, 2, d.Comparison.Current.Beneficiaries)
	assert.Equal(t, 1, d.Comparison.Previous.Beneficiaries)
}

func TestComputeRejectsBadOptions(t *testing.T) {
	view := viewOf(rec())
	_, err := Compute(view, Selection{}, WithFlowColumns(schema.ColRegion))
	assert.Error(t, err)
	_, err = Compute(view, Selection{}, WithTrend(TrendOptions{ValueColumn: schema.ColDistrict}))
	assert.Error(t, err)
	_, err = Compute(view, Selection{}, WithTargets([]IndicatorTarget{{Key: "missing"}}))
	assert.Error(t, err)

	d, err := Compute(view, Selection{})
	require.NoError(t, err)
	_, err = d.Table("pie")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	view := viewOf(
		rec(region("South", "S2"), size(7), registered(2024, 3, 1)),
		rec(region("North", "N1"), size(2), registered(2023, 11, 5)),
		rec(region("South", "S1"), size(4), registered(2024, 1, 1)),
	)
	opts := Options(view, "South")

	assert.Equal(t, []string{All, "North", "South"}, opts.Columns[schema.ColRegion])
	assert.Equal(t, []string{All, "S1", "S2"}, opts.Columns[schema.ColDistrict])
	assert.Equal(t, append([]string{All}, schema.StageEnum.Labels...), opts.Columns[schema.ColPathwayStage])
	assert.Equal(t, []string{All, "Yes", "No"}, opts.Columns[schema.ColLivelihoodSupport])
	assert.Equal(t, day(2023, 11, 5), opts.DateMin)
	assert.Equal(t, day(2024, 3, 1), opts.DateMax)
	assert.Equal(t, 2, opts.HouseholdMin)
	assert.Equal(t, 7, opts.HouseholdMax)
	assert.Equal(t, QuickFilters, opts.QuickFilters)

	all := Options(view, All)
	assert.Equal(t, []string{All, "N1", "S1", "S2"}, all.Columns[schema.ColDistrict])
	for _, col := range schema.FilterColumns {
		assert.Equal(t, All, all.Columns[col][0], col)
	}
}

func TestBuilders(t *testing.T) {
	view := viewOf(
		rec(region("North", "N1"), registered(2024, 1, 3), stage(schema.StageAchieved)),
		rec(region("North", "N1"), registered(2024, 2, 3)),
		rec(region("South", "S1"), registered(2024, 2, 9), located(2.5, 45.25)),
	)
	d, err := Compute(view, Selection{})
	require.NoError(t, err)

	regions, _ := d.Table(ReportRegions)
	assert.Equal(t, []string{"North", "2", "8", "0", "1", "0", "50.0", "0.0"}, regions.Rows[0])
	assert.Equal(t, "Total (2 regions)", regions.Summary.Label)

	progress, _ := d.Table(ReportProgress)
	assert.Equal(t, []string{"Solutions Pathway", "Assessment", "Planning", "Implementation", "Achieved", "Total", "Achievement Rate"}, progress.Header())
	assert.Equal(t, []string{"Return", "2", "0", "0", "1", "3", "33.3"}, progress.Rows[0])

	trends, _ := d.Table(ReportTrends)
	assert.Equal(t, [][]string{{"2024-01", "1", "1"}, {"2024-02", "2", "3"}}, trends.Rows)

	kpis, _ := d.Table(ReportKPIs)
	assert.Equal(t, []string{"total_beneficiaries", "3"}, kpis.Rows[0])
	assert.Equal(t, []string{"achievement_rate", "0.3333"}, kpis.Rows[3])

	records := RecordsTable(view)
	require.Len(t, records.Rows, 3)
	assert.Len(t, records.Columns, len(schema.SourceColumns()))
	assert.Equal(t, "2.5", records.Rows[2][3])

	growth := d.Text.Growth
	require.NotNil(t, growth)
	assert.Equal(t, "increased", growth.Direction)
	assert.Equal(t, 100.0, growth.ChangePercent)
	assert.Equal(t, "3 households registered over 2024-01 – 2024-02. Registrations ↑ 100.0% in 2024-02 vs 2024-01.", d.Text.Sentence())

	pie := BreakdownChart(d.KPIs, schema.ColPathwayStage)
	require.NotNil(t, pie)
	require.Len(t, pie.Series[0].Data, 2)
	assert.Equal(t, "Assessment", pie.Series[0].Data[0].Label)
	assert.Nil(t, BreakdownChart(d.KPIs, schema.ColRegion))
}

func TestBuildGrowthEdges(t *testing.T) {
	assert.Nil(t, BuildGrowth(nil))
	assert.Equal(t, "insufficient data", BuildGrowth([]TrendRow{{Month: "2024-01", Value: 3}}).Direction)
	g := BuildGrowth([]TrendRow{{Month: "2024-01", Value: 0}, {Month: "2024-02", Value: 4}})
	assert.Equal(t, "unchanged", g.Direction)
	assert.Equal(t, "No data", DerivePeriod(nil))
}
