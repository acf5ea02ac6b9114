package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/spektr-org/solutions/config"
	"github.com/spektr-org/solutions/engine"
	"github.com/spektr-org/solutions/metrics"
	"github.com/spektr-org/solutions/observability"
	"github.com/spektr-org/solutions/schema"
	"github.com/spektr-org/solutions/source"
)

// Global flags shared by every command. A CLI run is short lived, so plain
// package variables are fine here.
var (
	configPath = flag.String("config", "", "Path to a YAML config file")
	dataPath   = flag.String("data", "", "CSV file to load instead of the configured source")
	logLevel   = flag.String("log-level", "", "Log level override: debug, info, warn, error")
)

// app is the loaded runtime of one command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	src    source.Source
}

// setup reads the configuration, builds the logger and opens the source.
func setup(ctx context.Context) (*app, error) {
	var opts []config.Option
	env := map[string]string{}
	if *dataPath != "" {
		env["SOLUTIONS_SOURCE_KIND"] = config.SourceCSV
		env["SOLUTIONS_SOURCE_PATH"] = *dataPath
	}
	if *logLevel != "" {
		env["LOG_LEVEL"] = *logLevel
	}
	if len(env) > 0 {
		opts = append(opts, config.WithEnvMap(env))
	}

	cfg, err := config.Load(*configPath, opts...)
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	src, err := source.Open(ctx, cfg.Source, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, src: src}, nil
}

// cache wraps the source for repeated reads.
func (a *app) cache(m *metrics.Metrics) *source.Cache {
	return source.NewCache(a.src, a.logger, m)
}

// load reads the dataset once.
func (a *app) load(ctx context.Context) (*engine.Dataset, error) {
	return a.cache(nil).Get(ctx)
}

func (a *app) close() {
	if c, ok := a.src.(io.Closer); ok {
		_ = c.Close()
	}
	_ = a.logger.Sync()
}

// fail prints err and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// ── Filter flags ──

// filterFlags maps the dashboard sidebar onto command flags.
type filterFlags struct {
	columns   map[string]*string
	dateStart string
	dateEnd   string
	sizeMin   int
	sizeMax   int
	quick     string
}

func (ff *filterFlags) register(f *flag.FlagSet) {
	ff.columns = make(map[string]*string, len(schema.FilterColumns))
	for _, col := range schema.FilterColumns {
		ff.columns[col] = f.String(col, "", "Filter on "+schema.DisplayName(col))
	}
	f.StringVar(&ff.dateStart, "date-start", "", "First registration date, inclusive (YYYY-MM-DD)")
	f.StringVar(&ff.dateEnd, "date-end", "", "Last registration date, inclusive (YYYY-MM-DD)")
	f.IntVar(&ff.sizeMin, "household-min", 0, "Minimum household size")
	f.IntVar(&ff.sizeMax, "household-max", 0, "Maximum household size")
	f.StringVar(&ff.quick, "quick", "", "Quick filter: achieved, idp, female_hoh, emergency")
}

func (ff *filterFlags) selection() (engine.Selection, engine.QuickFilter, error) {
	var sel engine.Selection
	for _, col := range schema.FilterColumns {
		if v := strings.TrimSpace(*ff.columns[col]); v != "" {
			if err := sel.Set(col, v); err != nil {
				return sel, "", err
			}
		}
	}

	var err error
	if sel.Dates.Start, err = flagDate("date-start", ff.dateStart); err != nil {
		return sel, "", err
	}
	if sel.Dates.End, err = flagDate("date-end", ff.dateEnd); err != nil {
		return sel, "", err
	}
	if ff.sizeMin < 0 || ff.sizeMax < 0 {
		return sel, "", fmt.Errorf("household size bounds must not be negative")
	}
	sel.HouseholdSize = engine.SizeRange{Min: ff.sizeMin, Max: ff.sizeMax}

	quick, err := engine.ParseQuickFilter(ff.quick)
	return sel, quick, err
}

func flagDate(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := schema.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s: %w", name, err)
	}
	return t, nil
}

// ── Output ──

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
	formatText  = "text"
)

// outputFlags selects the format and destination of a command's output.
type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(f *flag.FlagSet, formats ...string) {
	f.StringVar(&o.format, "format", formats[0], "Output format: "+strings.Join(formats, ", "))
	f.StringVar(&o.out, "out", "", "Write output to file instead of stdout")
}

// open returns the output writer and its closer.
func (o *outputFlags) open() (io.Writer, func() error, error) {
	if o.out == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(o.out)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints t as an ASCII table, with its summary as the footer.
func writeTable(w io.Writer, t *engine.TableData) {
	if t.Title != "" {
		fmt.Fprintln(w, t.Title)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Header())
	table.SetAutoWrapText(false)
	table.SetColumnAlignment(alignments(t.Columns))
	table.AppendBulk(t.Rows)
	if t.Summary != nil {
		footer := make([]string, len(t.Columns))
		footer[0] = t.Summary.Label
		for i, c := range t.Columns {
			if v, ok := t.Summary.Values[c.Key]; ok {
				footer[i] = v
			}
		}
		table.SetFooter(footer)
	}
	table.Render()
}

func alignments(cols []engine.Column) []int {
	out := make([]int, len(cols))
	for i, c := range cols {
		if c.Type == "text" {
			out[i] = tablewriter.ALIGN_LEFT
		} else {
			out[i] = tablewriter.ALIGN_RIGHT
		}
	}
	return out
}
