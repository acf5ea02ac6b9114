package schema

import (
	"strconv"
	"time"
)

// Beneficiary is one registered household. Derived fields are filled by
// Derive and never change afterwards.
type Beneficiary struct {
	ID                  string              `json:"beneficiary_id"`
	Region              string              `json:"region"`
	District            string              `json:"district"`
	Latitude            *float64            `json:"latitude"`
	Longitude           *float64            `json:"longitude"`
	DisplacementStatus  DisplacementStatus  `json:"displacement_status"`
	SolutionsPathway    Pathway             `json:"solutions_pathway"`
	PathwayStage        Stage               `json:"pathway_stage"`
	HouseholdSize       int                 `json:"household_size"`
	GenderHoH           Gender              `json:"gender_hoh"`
	ShelterStatus       ShelterStatus       `json:"shelter_status"`
	DocumentationStatus DocumentationStatus `json:"documentation_status"`
	LivelihoodSupport   LivelihoodSupport   `json:"livelihood_support"`
	RegistrationDate    time.Time           `json:"registration_date"`

	RegistrationMonth    string `json:"registration_month"`
	RegistrationQuarter  string `json:"registration_quarter"`
	RegistrationYear     int    `json:"registration_year"`
	TotalIndividuals     int    `json:"total_individuals"`
	IsFemaleHoH          bool   `json:"is_female_hoh"`
	HasLivelihoodSupport bool   `json:"has_livelihood_support"`
	IsAchieved           bool   `json:"is_achieved"`
	HasDocumentation     bool   `json:"has_documentation"`
}

// Derive computes the helper fields from the source fields.
func (b *Beneficiary) Derive() {
	b.RegistrationDate = Day(b.RegistrationDate)
	b.RegistrationMonth = MonthOf(b.RegistrationDate)
	b.RegistrationQuarter = QuarterOf(b.RegistrationDate)
	b.RegistrationYear = b.RegistrationDate.Year()
	b.TotalIndividuals = b.HouseholdSize
	b.IsFemaleHoH = b.GenderHoH == Female
	b.HasLivelihoodSupport = b.LivelihoodSupport == LivelihoodYes
	b.IsAchieved = b.PathwayStage == StageAchieved
	b.HasDocumentation = b.DocumentationStatus == DocumentationComplete
}

// HasLocation reports whether both coordinates are present.
func (b *Beneficiary) HasLocation() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// Dimension returns the text value of a categorical or identifying column.
// Unknown columns yield "".
func (b *Beneficiary) Dimension(col string) string {
	switch col {
	case ColBeneficiaryID:
		return b.ID
	case ColRegion:
		return b.Region
	case ColDistrict:
		return b.District
	case ColDisplacementStatus:
		return string(b.DisplacementStatus)
	case ColSolutionsPathway:
		return string(b.SolutionsPathway)
	case ColPathwayStage:
		return string(b.PathwayStage)
	case ColGenderHoH:
		return string(b.GenderHoH)
	case ColShelterStatus:
		return string(b.ShelterStatus)
	case ColDocumentationStatus:
		return string(b.DocumentationStatus)
	case ColLivelihoodSupport:
		return string(b.LivelihoodSupport)
	case ColRegistrationDate:
		return b.RegistrationDate.Format("2006-01-02")
	case ColRegistrationMonth:
		return b.RegistrationMonth
	case ColRegistrationQuarter:
		return b.RegistrationQuarter
	case ColRegistrationYear:
		return strconv.Itoa(b.RegistrationYear)
	case ColHouseholdSize:
		return strconv.Itoa(b.HouseholdSize)
	}
	return ""
}

// Measure returns the numeric value of a column. Flags read as 0 or 1;
// missing coordinates and unknown columns read as 0.
func (b *Beneficiary) Measure(col string) float64 {
	switch col {
	case ColHouseholdSize:
		return float64(b.HouseholdSize)
	case ColTotalIndividuals:
		return float64(b.TotalIndividuals)
	case ColLatitude:
		if b.Latitude != nil {
			return *b.Latitude
		}
	case ColLongitude:
		if b.Longitude != nil {
			return *b.Longitude
		}
	case ColIsFemaleHoH:
		return flag(b.IsFemaleHoH)
	case ColHasLivelihoodSupport:
		return flag(b.HasLivelihoodSupport)
	case ColIsAchieved:
		return flag(b.IsAchieved)
	case ColHasDocumentation:
		return flag(b.HasDocumentation)
	case ColRegistrationYear:
		return float64(b.RegistrationYear)
	}
	return 0
}

// Row returns the source columns in SourceColumns order, formatted for export.
func (b *Beneficiary) Row() []string {
	cols := SourceColumns()
	row := make([]string, len(cols))
	for i, c := range cols {
		switch c {
		case ColLatitude, ColLongitude:
			if b.HasLocation() {
				row[i] = strconv.FormatFloat(b.Measure(c), 'f', -1, 64)
			}
		default:
			row[i] = b.Dimension(c)
		}
	}
	return row
}

func flag(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
