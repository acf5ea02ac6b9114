package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/solutions/engine"
	"github.com/spektr-org/solutions/schema"
)

func sample() []schema.Beneficiary {
	lat, lon := 2.1, 45.3
	records := []schema.Beneficiary{
		{ID: "B1", Region: "North", District: "N1", Latitude: &lat, Longitude: &lon,
			DisplacementStatus: schema.IDP, SolutionsPathway: schema.PathwayReturn, PathwayStage: schema.StageAchieved,
			HouseholdSize: 5, GenderHoH: schema.Female, ShelterStatus: schema.ShelterPermanent,
			DocumentationStatus: schema.DocumentationComplete, LivelihoodSupport: schema.LivelihoodYes,
			RegistrationDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "B2", Region: "South", District: "S1",
			DisplacementStatus: schema.Returnee, SolutionsPathway: schema.PathwayRelocation, PathwayStage: schema.StagePlanning,
			HouseholdSize: 3, GenderHoH: schema.Male, ShelterStatus: schema.ShelterEmergency,
			DocumentationStatus: schema.DocumentationNone, LivelihoodSupport: schema.LivelihoodNo,
			RegistrationDate: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)},
	}
	for i := range records {
		records[i].Derive()
	}
	return records
}

func TestWorkbook(t *testing.T) {
	view := engine.NewRecordsView(sample())
	d, err := engine.Compute(view, engine.Selection{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, view, d))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, Sheets, f.GetSheetList())

	raw, err := f.GetRows(SheetRawData)
	require.NoError(t, err)
	require.Len(t, raw, 3)
	assert.Equal(t, schema.SourceColumns(), raw[0])
	assert.Equal(t, "B1", raw[1][0])

	regional, err := f.GetRows(SheetRegional)
	require.NoError(t, err)
	assert.Equal(t, "Region", regional[0][0])
	assert.Len(t, regional, 3)

	kpis, err := f.GetRows(SheetKPIs)
	require.NoError(t, err)
	assert.Equal(t, []string{"Indicator", "Value"}, kpis[0])
	assert.Equal(t, []string{"total_beneficiaries", "2"}, kpis[1])

	size, err := f.GetCellType(SheetRawData, "I2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, size, "household size is stored as a number")
}

func TestCSV(t *testing.T) {
	view := engine.NewRecordsView(sample())
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, engine.RegionalTable(engine.RegionalSummary(view))))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Region,Beneficiaries,Individuals,Female HoH,Achieved,Livelihood Support,Achievement Rate (%),Female HoH Rate (%)", lines[0])
	assert.Equal(t, "North,1,5,1,1,1,100.0,100.0", lines[1])
}
