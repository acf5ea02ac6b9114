package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/spektr-org/solutions/engine"
	"github.com/spektr-org/solutions/export"
	"github.com/spektr-org/solutions/render"
	"github.com/spektr-org/solutions/schema"
)

// ── version ──

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print the version" }
func (*versionCmd) Usage() string            { return "version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Printf("solutions %s\n", version)
	return subcommands.ExitSuccess
}

// ── check ──

// checkCmd loads the dataset and lists unknown category values.
type checkCmd struct {
	output outputFlags
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "load the dataset and report unknown category values" }
func (*checkCmd) Usage() string {
	return `check [-format table|json]

  Loads the configured source. Schema or row errors fail the command;
  values outside a closed category set are listed as warnings.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	c.output.register(f, formatTable, formatJSON)
}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	ds, err := a.load(ctx)
	if err != nil {
		return fail(err)
	}

	w, closeOut, err := c.output.open()
	if err != nil {
		return fail(err)
	}
	defer closeOut()

	if c.output.format == formatJSON {
		if err := writeJSON(w, map[string]any{
			"source":   ds.Source,
			"records":  ds.Len(),
			"warnings": ds.Warnings,
		}); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	fmt.Fprintf(w, "%s: %s records, %d unknown category values\n", ds.Source, engine.FormatInt(ds.Len()), len(ds.Warnings))
	if len(ds.Warnings) > 0 {
		t := &engine.TableData{
			Columns: []engine.Column{
				{Key: "row", Label: "Row", Type: "number"},
				{Key: "column", Label: "Column", Type: "text"},
				{Key: "value", Label: "Value", Type: "text"},
			},
		}
		for _, warn := range ds.Warnings {
			t.Rows = append(t.Rows, []string{strconv.Itoa(warn.Row), warn.Column, warn.Value})
		}
		writeTable(w, t)
	}
	return subcommands.ExitSuccess
}

// ── options ──

type optionsCmd struct {
	region string
	output outputFlags
}

func (*optionsCmd) Name() string     { return "options" }
func (*optionsCmd) Synopsis() string { return "list the filter choices of the dataset" }
func (*optionsCmd) Usage() string {
	return `options [-region name] [-format table|json]

  Lists the values each filter accepts. Districts are narrowed to -region.
`
}

func (c *optionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.region, "region", "", "Narrow district choices to this region")
	c.output.register(f, formatTable, formatJSON)
}

func (c *optionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	ds, err := a.load(ctx)
	if err != nil {
		return fail(err)
	}
	opts := engine.Options(ds.View(), c.region)

	w, closeOut, err := c.output.open()
	if err != nil {
		return fail(err)
	}
	defer closeOut()

	if c.output.format == formatJSON {
		if err := writeJSON(w, opts); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	t := &engine.TableData{
		Title: "Filter Options",
		Columns: []engine.Column{
			{Key: "filter", Label: "Filter", Type: "text"},
			{Key: "values", Label: "Values", Type: "text"},
		},
	}
	for _, col := range schema.FilterColumns {
		t.Rows = append(t.Rows, []string{schema.DisplayName(col), strings.Join(opts.Columns[col], ", ")})
	}
	t.Rows = append(t.Rows,
		[]string{"Registration Date", fmt.Sprintf("%s – %s", opts.DateMin.Format("2006-01-02"), opts.DateMax.Format("2006-01-02"))},
		[]string{"Household Size", fmt.Sprintf("%d – %d", opts.HouseholdMin, opts.HouseholdMax)},
	)
	writeTable(w, t)
	return subcommands.ExitSuccess
}

// ── map ──

type mapCmd struct {
	filters filterFlags
	output  outputFlags
	colorBy string
	weight  string
}

func (*mapCmd) Name() string     { return "map" }
func (*mapCmd) Synopsis() string { return "print map markers, heat points and region bubbles" }
func (*mapCmd) Usage() string {
	return `map [filters] [-color-by column] [-weight column] [-format json|table]

  Builds the map layers of the filtered dataset. Records without
  coordinates are skipped.
`
}

func (c *mapCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	c.output.register(f, formatJSON, formatTable)
	f.StringVar(&c.colorBy, "color-by", engine.DefaultMapColumn, "Categorical column colouring the markers")
	f.StringVar(&c.weight, "weight", "", "Numeric column weighting heat points (default: 1 per household)")
}

func (c *mapCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	filtered := engine.Apply(ds.View(), quick.ApplyTo(sel))

	layer, err := engine.MapLayer(filtered, c.colorBy)
	if err != nil {
		return fail(err)
	}
	heat, err := engine.HeatPoints(filtered, c.weight)
	if err != nil {
		return fail(err)
	}

	w, closeOut, err := c.output.open()
	if err != nil {
		return fail(err)
	}
	defer closeOut()

	if c.output.format == formatJSON {
		if err := writeJSON(w, map[string]any{
			"layer":   layer,
			"heat":    heat,
			"bubbles": engine.RegionBubbles(filtered),
		}); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	t := &engine.TableData{
		Title: layer.Title,
		Columns: []engine.Column{
			{Key: "id", Label: "Beneficiary ID", Type: "text"},
			{Key: "lat", Label: "Latitude", Type: "number"},
			{Key: "lon", Label: "Longitude", Type: "number"},
			{Key: "category", Label: layer.Title, Type: "text"},
			{Key: "color", Label: "Colour", Type: "text"},
		},
	}
	for _, m := range layer.Markers {
		t.Rows = append(t.Rows, []string{
			m.ID,
			strconv.FormatFloat(m.Lat, 'f', 4, 64),
			strconv.FormatFloat(m.Lon, 'f', 4, 64),
			m.Category,
			m.Color,
		})
	}
	writeTable(w, t)
	fmt.Fprintf(w, "%d records without coordinates skipped\n", layer.Skipped)
	return subcommands.ExitSuccess
}

// ── export ──

type exportCmd struct {
	filters filterFlags
	format  string
	report  string
	out     string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the filtered reports as xlsx or csv" }
func (*exportCmd) Usage() string {
	return fmt.Sprintf(`export [filters] -out file [-format xlsx|csv] [-report name]

  xlsx writes one workbook with the sheets: %s.
  csv writes a single report, one of: %s.
`, strings.Join(export.Sheets, ", "), strings.Join(engine.Reports, ", "))
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.StringVar(&c.format, "format", "xlsx", "Export format: xlsx or csv")
	f.StringVar(&c.report, "report", engine.ReportRecords, "Report to write with -format csv")
	f.StringVar(&c.out, "out", "", "Output file (required)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out is required.")
		return subcommands.ExitUsageError
	}
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
	d, err := engine.Compute(ds.View(), sel,
		engine.WithLogger(a.logger),
		engine.WithTargets(a.cfg.Indicators),
		engine.WithQuickFilter(quick),
	)
	if err != nil {
		return fail(err)
	}
	filtered := engine.Apply(ds.View(), d.Selection)

	err = writeFile(c.out, func(w io.Writer) error {
		switch c.format {
		case "xlsx":
			return export.Workbook(w, filtered, d)
		case formatCSV:
			if c.report == engine.ReportRecords {
				return export.CSV(w, engine.RecordsTable(filtered))
			}
			t, err := d.Table(c.report)
			if err != nil {
				return err
			}
			return export.CSV(w, t)
		default:
			return fmt.Errorf("unknown export format %q", c.format)
		}
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("wrote %s (%s of %s records)\n", c.out, engine.FormatInt(d.Matched), engine.FormatInt(d.Total))
	return subcommands.ExitSuccess
}

// ── chart ──

type chartCmd struct {
	filters filterFlags
	kind    string
	value   string
	out     string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw a report chart as PNG" }
func (*chartCmd) Usage() string {
	return `chart [filters] -kind trend|regions|progress -out file.png [-value column]
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.StringVar(&c.kind, "kind", "trend", "Chart to draw: trend, regions or progress")
	f.StringVar(&c.value, "value", "", "Numeric column summed by the trend chart")
	f.StringVar(&c.out, "out", "", "Output PNG file (required)")
}

func (c *chartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out is required.")
		return subcommands.ExitUsageError
	}
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
	d, err := engine.Compute(ds.View(), sel,
		engine.WithLogger(a.logger),
		engine.WithQuickFilter(quick),
		engine.WithTrend(engine.TrendOptions{ValueColumn: c.value}),
	)
	if err != nil {
		return fail(err)
	}

	err = writeFile(c.out, func(w io.Writer) error {
		switch c.kind {
		case "trend":
			return render.TrendChart(w, d.Trend, d.TrendLabel)
		case "regions":
			return render.RegionalChart(w, d.Regions)
		case "progress":
			return render.ProgressChart(w, d.Progress)
		default:
			return fmt.Errorf("unknown chart %q", c.kind)
		}
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// writeFile creates path and fills it with write, removing it on failure.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
