package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/solutions/engine"
	"github.com/spektr-org/solutions/schema"
)

// query is a parsed dashboard request. Parameter names follow the
// Selection JSON names.
type query struct {
	selection engine.Selection
	quick     engine.QuickFilter
	trend     engine.TrendOptions
	flow      []string
	colorBy   string
}

func parseQuery(values url.Values) (query, error) {
	var q query
	for _, col := range schema.FilterColumns {
		if v := strings.TrimSpace(values.Get(col)); v != "" {
			if err := q.selection.Set(col, v); err != nil {
				return q, err
			}
		}
	}

	var err error
	if q.selection.Dates.Start, err = dateParam(values, "date_start"); err != nil {
		return q, err
	}
	if q.selection.Dates.End, err = dateParam(values, "date_end"); err != nil {
		return q, err
	}
	if !q.selection.Dates.Start.IsZero() && !q.selection.Dates.End.IsZero() &&
		q.selection.Dates.End.Before(q.selection.Dates.Start) {
		return q, fmt.Errorf("date_end is before date_start")
	}
	if q.selection.HouseholdSize.Min, err = intParam(values, "household_min"); err != nil {
		return q, err
	}
	if q.selection.HouseholdSize.Max, err = intParam(values, "household_max"); err != nil {
		return q, err
	}

	if q.quick, err = engine.ParseQuickFilter(values.Get("quick")); err != nil {
		return q, err
	}

	q.trend.ValueColumn = strings.TrimSpace(values.Get("value_column"))
	if raw := values.Get("fill_gaps"); raw != "" {
		if q.trend.FillGaps, err = strconv.ParseBool(raw); err != nil {
			return q, fmt.Errorf("fill_gaps: %w", err)
		}
	}
	if raw := strings.TrimSpace(values.Get("flow_columns")); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			q.flow = append(q.flow, strings.TrimSpace(c))
		}
	}
	q.colorBy = strings.TrimSpace(values.Get("color_by"))
	return q, nil
}

// options returns the Compute options of q.
func (q query) options(targets []engine.IndicatorTarget) []engine.Option {
	return []engine.Option{
		engine.WithTargets(targets),
		engine.WithQuickFilter(q.quick),
		engine.WithTrend(q.trend),
		engine.WithFlowColumns(q.flow...),
		engine.WithMapColumn(q.colorBy),
	}
}

func dateParam(values url.Values, key string) (time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := schema.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func intParam(values url.Values, key string) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: not a non-negative integer: %q", key, raw)
	}
	return n, nil
}
