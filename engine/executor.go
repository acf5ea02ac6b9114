package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// EXECUTOR — One recomputation pass per filter change
// ============================================================================
// Entry point: Compute(view, selection, opts...)
//
// Pipeline:
//   1. Layer the quick filter onto the selection
//   2. Apply the selection → SubView
//   3. KPIs, indicator progress, regional summary, monthly trend,
//      pathway progress, flow graph, map layer
//   4. Period comparison when the selection has both date bounds
//   5. Build charts and the headline text
//
// All computation is local and synchronous. The input view is never mutated.
// ============================================================================

// Dashboard is everything a rendering surface needs for one selection.
type Dashboard struct {
	Selection     Selection               `json:"selection"`
	ActiveFilters []string                `json:"active_filters"`
	Total         int                     `json:"total"`
	Matched       int                     `json:"matched"`
	KPIs          KPIs                    `json:"kpis"`
	Text          *TextData               `json:"text"`
	Indicators    []IndicatorProgress     `json:"indicators"`
	Regions       []RegionRow             `json:"regions"`
	Trend         []TrendRow              `json:"trend"`
	TrendLabel    string                  `json:"trend_label"`
	Progress      []ProgressRow           `json:"progress"`
	Flow          *Graph                  `json:"flow"`
	Map           *MapData                `json:"map"`
	Comparison    *Comparison             `json:"comparison,omitempty"`
	Charts        map[string]*ChartConfig `json:"charts"`
}

// Compute runs every report over the records of view matching sel.
//
// Options:
//   - WithLogger(l): logs one line per pass at debug level
//   - WithTargets(t): programme targets (default DefaultTargets)
//   - WithTrend(o): monthly trend value column / gap filling
//   - WithFlowColumns(c...): flow graph columns (default DefaultChainedFlow)
//   - WithMapColumn(c): marker colouring column (default DefaultMapColumn)
//   - WithQuickFilter(q): preset layered onto sel
func Compute(view RecordView, sel Selection, opts ...Option) (*Dashboard, error) {
	cfg := applyOptions(opts)
	started := time.Now()

	sel = cfg.Quick.ApplyTo(sel)
	filtered := Apply(view, sel)

	d := &Dashboard{
		Selection:     sel,
		ActiveFilters: sel.ActiveLabels(),
		Total:         view.Len(),
		Matched:       filtered.Len(),
		KPIs:          ComputeKPIs(filtered),
		Regions:       RegionalSummary(filtered),
		Progress:      PathwayProgress(filtered),
	}

	var err error
	if d.Indicators, err = Indicators(d.KPIs, cfg.Targets); err != nil {
		return nil, err
	}
	if d.Trend, err = MonthlyTrend(filtered, cfg.Trend); err != nil {
		return nil, err
	}
	if d.Flow, err = Flow(filtered, cfg.FlowColumns...); err != nil {
		return nil, err
	}
	if d.Map, err = MapLayer(filtered, cfg.MapColumn); err != nil {
		return nil, err
	}

	if !sel.Dates.Start.IsZero() && !sel.Dates.End.IsZero() {
		// Compare against the same filters minus the date range.
		undated := sel
		undated.Dates = DateRange{}
		c := ComparePeriods(Apply(view, undated), sel.Dates, PreviousPeriod(sel.Dates))
		d.Comparison = &c
	}

	d.TrendLabel = "Registrations"
	if cfg.Trend.ValueColumn != "" {
		d.TrendLabel = schema.DisplayName(cfg.Trend.ValueColumn)
	}
	d.Text = BuildText(filtered, d.Trend, sel)
	d.Charts = map[string]*ChartConfig{
		"trend":        TrendChart(d.Trend, d.TrendLabel),
		"regions":      RegionalChart(d.Regions),
		"progress":     ProgressChart(d.Progress),
		"pathway":      BreakdownChart(d.KPIs, schema.ColSolutionsPathway),
		"displacement": BreakdownChart(d.KPIs, schema.ColDisplacementStatus),
	}

	cfg.Logger.Debug("dashboard computed",
		zap.Int("records", d.Total),
		zap.Int("matched", d.Matched),
		zap.Strings("filters", d.ActiveFilters),
		zap.Duration("elapsed", time.Since(started)),
	)
	return d, nil
}

// Report names accepted by Dashboard.Table.
const (
	ReportRegions    = "regions"
	ReportProgress   = "progress"
	ReportTrends     = "trends"
	ReportKPIs       = "kpis"
	ReportIndicators = "indicators"
	ReportFlow       = "flow"
	ReportRecords    = "records"
)

// Reports lists the report names in export order.
var Reports = []string{ReportRecords, ReportRegions, ReportProgress, ReportTrends, ReportKPIs, ReportIndicators, ReportFlow}

// Table returns one report of the dashboard as a table. The records report
// needs the filtered view and is built by RecordsTable instead.
func (d *Dashboard) Table(report string) (*TableData, error) {
	switch report {
	case ReportRegions:
		return RegionalTable(d.Regions), nil
	case ReportProgress:
		return ProgressTable(d.Progress), nil
	case ReportTrends:
		return TrendTable(d.Trend, d.TrendLabel), nil
	case ReportKPIs:
		return KPITable(d.KPIs), nil
	case ReportIndicators:
		return IndicatorTable(d.Indicators), nil
	case ReportFlow:
		return FlowTable(d.Flow), nil
	}
	return nil, fmt.Errorf("unknown report %q", report)
}
