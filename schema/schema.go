package schema

// ============================================================================
// SCHEMA — Column catalogue for the beneficiary dataset
// ============================================================================
// Describes every source and derived column: which are required, which are
// categorical (filterable/groupable), which are numeric measures, and the
// closed label set behind each enumerated field.
//
// The loader uses RequiredColumns to reject malformed sources. The engine uses
// the catalogue for option lists, generic column access and display labels.
// ============================================================================

// Source columns.
const (
	ColBeneficiaryID       = "beneficiary_id"
	ColRegion              = "region"
	ColDistrict            = "district"
	ColLatitude            = "latitude"
	ColLongitude           = "longitude"
	ColDisplacementStatus  = "displacement_status"
	ColSolutionsPathway    = "solutions_pathway"
	ColPathwayStage        = "pathway_stage"
	ColHouseholdSize       = "household_size"
	ColGenderHoH           = "gender_hoh"
	ColShelterStatus       = "shelter_status"
	ColDocumentationStatus = "documentation_status"
	ColLivelihoodSupport   = "livelihood_support"
	ColRegistrationDate    = "registration_date"
)

// Derived columns, computed once at load.
const (
	ColRegistrationMonth    = "registration_month"
	ColRegistrationQuarter  = "registration_quarter"
	ColRegistrationYear     = "registration_year"
	ColTotalIndividuals     = "total_individuals"
	ColIsFemaleHoH          = "is_female_hoh"
	ColHasLivelihoodSupport = "has_livelihood_support"
	ColIsAchieved           = "is_achieved"
	ColHasDocumentation     = "has_documentation"
)

// RequiredColumns must be present in every source header.
// Latitude and longitude are optional: unmapped datasets load without them.
var RequiredColumns = []string{
	ColBeneficiaryID,
	ColRegion,
	ColDistrict,
	ColDisplacementStatus,
	ColSolutionsPathway,
	ColPathwayStage,
	ColHouseholdSize,
	ColGenderHoH,
	ColShelterStatus,
	ColDocumentationStatus,
	ColLivelihoodSupport,
	ColRegistrationDate,
}

// OptionalColumns are read when present.
var OptionalColumns = []string{ColLatitude, ColLongitude}

// SourceColumns is the full source header in canonical order.
func SourceColumns() []string {
	cols := make([]string, 0, len(RequiredColumns)+len(OptionalColumns))
	cols = append(cols, ColBeneficiaryID, ColRegion, ColDistrict, ColLatitude, ColLongitude)
	cols = append(cols, RequiredColumns[3:]...)
	return cols
}

// ColumnMeta describes one column of the dataset.
type ColumnMeta struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Categorical bool   `json:"categorical,omitempty"` // usable for filtering/grouping
	Enumerated  bool   `json:"enumerated,omitempty"`  // closed label set (see Enum)
	Measure     bool   `json:"measure,omitempty"`     // numeric, summable
	Derived     bool   `json:"derived,omitempty"`
}

// Columns is the catalogue of every addressable column.
var Columns = []ColumnMeta{
	{Key: ColBeneficiaryID, DisplayName: "Beneficiary ID"},
	{Key: ColRegion, DisplayName: "Region", Categorical: true},
	{Key: ColDistrict, DisplayName: "District", Categorical: true},
	{Key: ColLatitude, DisplayName: "Latitude", Measure: true},
	{Key: ColLongitude, DisplayName: "Longitude", Measure: true},
	{Key: ColDisplacementStatus, DisplayName: "Displacement Status", Categorical: true, Enumerated: true},
	{Key: ColSolutionsPathway, DisplayName: "Solutions Pathway", Categorical: true, Enumerated: true},
	{Key: ColPathwayStage, DisplayName: "Pathway Stage", Categorical: true, Enumerated: true},
	{Key: ColHouseholdSize, DisplayName: "Household Size", Measure: true},
	{Key: ColGenderHoH, DisplayName: "Gender of Head of Household", Categorical: true, Enumerated: true},
	{Key: ColShelterStatus, DisplayName: "Shelter Status", Categorical: true, Enumerated: true},
	{Key: ColDocumentationStatus, DisplayName: "Documentation Status", Categorical: true, Enumerated: true},
	{Key: ColLivelihoodSupport, DisplayName: "Livelihood Support", Categorical: true, Enumerated: true},
	{Key: ColRegistrationDate, DisplayName: "Registration Date"},
	{Key: ColRegistrationMonth, DisplayName: "Registration Month", Categorical: true, Derived: true},
	{Key: ColRegistrationQuarter, DisplayName: "Registration Quarter", Categorical: true, Derived: true},
	{Key: ColRegistrationYear, DisplayName: "Registration Year", Categorical: true, Derived: true},
	{Key: ColTotalIndividuals, DisplayName: "Total Individuals", Measure: true, Derived: true},
	{Key: ColIsFemaleHoH, DisplayName: "Female-Headed Household", Measure: true, Derived: true},
	{Key: ColHasLivelihoodSupport, DisplayName: "Has Livelihood Support", Measure: true, Derived: true},
	{Key: ColIsAchieved, DisplayName: "Solution Achieved", Measure: true, Derived: true},
	{Key: ColHasDocumentation, DisplayName: "Complete Documentation", Measure: true, Derived: true},
}

var columnIndex = func() map[string]ColumnMeta {
	m := make(map[string]ColumnMeta, len(Columns))
	for _, c := range Columns {
		m[c.Key] = c
	}
	return m
}()

// Lookup returns the metadata for a column key.
func Lookup(key string) (ColumnMeta, bool) {
	c, ok := columnIndex[key]
	return c, ok
}

// IsCategorical reports whether key names a column usable for grouping.
func IsCategorical(key string) bool {
	return columnIndex[key].Categorical
}

// IsMeasure reports whether key names a numeric column.
func IsMeasure(key string) bool {
	return columnIndex[key].Measure
}

// DisplayName returns the human label for a column, or the key itself.
func DisplayName(key string) string {
	if c, ok := columnIndex[key]; ok {
		return c.DisplayName
	}
	return key
}

// FilterColumns are the categorical columns a Selection can constrain, in
// sidebar order.
var FilterColumns = []string{
	ColRegion,
	ColDistrict,
	ColSolutionsPathway,
	ColPathwayStage,
	ColDisplacementStatus,
	ColGenderHoH,
	ColShelterStatus,
	ColLivelihoodSupport,
	ColDocumentationStatus,
}
