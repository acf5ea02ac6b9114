package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"

	"github.com/spektr-org/solutions/engine"
	"github.com/spektr-org/solutions/export"
)

// ============================================================================
// REPORT COMMANDS
// ============================================================================

// reportCmd prints one dashboard report for the filtered dataset.
type reportCmd struct {
	name     string
	synopsis string
	// pick returns the JSON payload and the table of the report.
	pick func(d *engine.Dashboard, filtered engine.RecordView) (any, *engine.TableData, error)

	filters filterFlags
	output  outputFlags

	valueColumn string
	fillGaps    bool
	flowColumns string
}

func reportCommands() []*reportCmd {
	return []*reportCmd{
		{
			name:     "kpis",
			synopsis: "print the headline indicators",
			pick: func(d *engine.Dashboard, _ engine.RecordView) (any, *engine.TableData, error) {
				return d.KPIs, engine.KPITable(d.KPIs), nil
			},
		},
		{
			name:     "regions",
			synopsis: "print the regional summary",
			pick: func(d *engine.Dashboard, _ engine.RecordView) (any, *engine.TableData, error) {
				return d.Regions, engine.RegionalTable(d.Regions), nil
			},
		},
		{
			name:     "trends",
			synopsis: "print monthly registrations with the running total",
			pick: func(d *engine.Dashboard, _ engine.RecordView) (any, *engine.TableData, error) {
				return d.Trend, engine.TrendTable(d.Trend, d.TrendLabel), nil
			},
		},
		{
			name:     "progress",
			synopsis: "print pathway stage counts",
			pick: func(d *engine.Dashboard, _ engine.RecordView) (any, *engine.TableData, error) {
				return d.Progress, engine.ProgressTable(d.Progress), nil
			},
		},
		{
			name:     "flow",
			synopsis: "print the flow between categorical columns",
			pick: func(d *engine.Dashboard, _ engine.RecordView) (any, *engine.TableData, error) {
				return d.Flow, engine.FlowTable(d.Flow), nil
			},
		},
		{
			name:     "indicators",
			synopsis: "print progress against programme targets",
			pick: func(d *engine.Dashboard, _ engine.RecordView) (any, *engine.TableData, error) {
				return d.Indicators, engine.IndicatorTable(d.Indicators), nil
			},
		},
		{
			name:     "compare",
			synopsis: "compare the date range with the period before it",
			pick: func(d *engine.Dashboard, _ engine.RecordView) (any, *engine.TableData, error) {
				if d.Comparison == nil {
					return nil, nil, errors.New("compare needs -date-start and -date-end")
				}
				return d.Comparison, engine.ComparisonTable(*d.Comparison), nil
			},
		},
		{
			name:     "records",
			synopsis: "print the filtered records",
			pick: func(_ *engine.Dashboard, filtered engine.RecordView) (any, *engine.TableData, error) {
				return engine.Records(filtered), engine.RecordsTable(filtered), nil
			},
		},
	}
}

func (c *reportCmd) Name() string     { return c.name }
func (c *reportCmd) Synopsis() string { return c.synopsis }
func (c *reportCmd) Usage() string {
	return fmt.Sprintf(`%s [filters] [-format table|json|csv|text] [-out file]

  Computes the dashboard for the filtered dataset and prints the %s report.
  The text format prints the headline summary sentence.
`, c.name, c.name)
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	c.output.register(f, formatTable, formatJSON, formatCSV, formatText)
	f.StringVar(&c.valueColumn, "value", "", "Sum this numeric column in the trend instead of counting registrations")
	f.BoolVar(&c.fillGaps, "fill-gaps", false, "Emit zero rows for months without registrations")
	f.StringVar(&c.flowColumns, "columns", "", "Comma separated flow columns, 2 or 3")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sel, quick, err := c.filters.selection()
	if err != nil {
		return fail(err)
	}

	a, err := setup(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	ds, err := a.load(ctx)
	if err != nil {
		return fail(err)
	}

	opts := []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithTargets(a.cfg.Indicators),
		engine.WithQuickFilter(quick),
		engine.WithTrend(engine.TrendOptions{ValueColumn: c.valueColumn, FillGaps: c.fillGaps}),
	}
	if c.flowColumns != "" {
		var cols []string
		for _, col := range strings.Split(c.flowColumns, ",") {
			cols = append(cols, strings.TrimSpace(col))
		}
		opts = append(opts, engine.WithFlowColumns(cols...))
	}

	d, err := engine.Compute(ds.View(), sel, opts...)
	if err != nil {
		return fail(err)
	}
	payload, table, err := c.pick(d, engine.Apply(ds.View(), d.Selection))
	if err != nil {
		return fail(err)
	}

	w, closeOut, err := c.output.open()
	if err != nil {
		return fail(err)
	}
	if err := writeReport(w, c.output.format, d, payload, table); err != nil {
		_ = closeOut()
		return fail(err)
	}
	if err := closeOut(); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// writeReport writes one report in the chosen format.
func writeReport(w io.Writer, format string, d *engine.Dashboard, payload any, table *engine.TableData) error {
	switch format {
	case formatTable:
		writeTable(w, table)
		return nil
	case formatJSON:
		return writeJSON(w, payload)
	case formatCSV:
		return export.CSV(w, table)
	case formatText:
		_, err := fmt.Fprintln(w, d.Text.Sentence())
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
