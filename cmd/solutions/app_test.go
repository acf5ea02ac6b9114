package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/solutions/engine"
)

func parseFilters(t *testing.T, args ...string) (engine.Selection, engine.QuickFilter, error) {
	t.Helper()
	var ff filterFlags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	ff.register(fs)
	require.NoError(t, fs.Parse(args))
	return ff.selection()
}

func TestFilterFlags(t *testing.T) {
	sel, quick, err := parseFilters(t,
		"-region", "North",
		"-displacement_status", "idp",
		"-date-start", "2024-01-01",
		"-household-min", "3",
		"-quick", "achieved",
	)
	require.NoError(t, err)
	assert.Equal(t, "North", sel.Region)
	assert.Equal(t, "idp", sel.DisplacementStatus, "canonicalised when applied")
	assert.Equal(t, 2024, sel.Dates.Start.Year())
	assert.True(t, sel.Dates.End.IsZero())
	assert.Equal(t, 3, sel.HouseholdSize.Min)
	assert.Equal(t, engine.QuickAchieved, quick)
}

func TestFilterFlagsReject(t *testing.T) {
	_, _, err := parseFilters(t, "-date-end", "soon")
	assert.ErrorContains(t, err, "-date-end")

	_, _, err = parseFilters(t, "-household-max", "-2")
	assert.Error(t, err)

	_, _, err = parseFilters(t, "-quick", "nearby")
	assert.Error(t, err)
}

func TestWriteReportFormats(t *testing.T) {
	d := &engine.Dashboard{
		Regions: []engine.RegionRow{{Region: "North", Beneficiaries: 2, Achieved: 1, AchievementRate: 50}},
		Text:    &engine.TextData{Value: "2", Unit: "households", Period: "2024-01", Count: 2},
	}
	table := engine.RegionalTable(d.Regions)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatTable, d, d.Regions, table))
	assert.Contains(t, buf.String(), "Regional Summary")
	assert.Contains(t, buf.String(), "North")

	buf.Reset()
	require.NoError(t, writeReport(&buf, formatCSV, d, d.Regions, table))
	assert.True(t, strings.HasPrefix(buf.String(), "Region,Beneficiaries"))

	buf.Reset()
	require.NoError(t, writeReport(&buf, formatJSON, d, d.Regions, table))
	assert.Contains(t, buf.String(), `"region": "North"`)

	buf.Reset()
	require.NoError(t, writeReport(&buf, formatText, d, d.Regions, table))
	assert.Equal(t, "2 households registered over 2024-01.\n", buf.String())

	assert.Error(t, writeReport(&buf, "yaml", d, d.Regions, table))
}
