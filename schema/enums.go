package schema

import (
	"strings"
)

// ============================================================================
// ENUMERATIONS — Closed label sets with an Other bucket
// ============================================================================
// Every enumerated column resolves raw source text to a canonical label once,
// at load time. Values outside the set become Other and are reported as an
// UnknownCategoryWarning; aggregation never has to guard against them.
// ============================================================================

// Other is the bucket label for values outside a closed set.
const Other = "Other"

// Enum is the closed label set of one categorical column.
type Enum struct {
	Column  string
	Labels  []string // canonical order
	KPIKeys []string // indicator name per label, parallel to Labels
	index   map[string]string
}

func newEnum(column string, labels, kpiKeys []string, aliases map[string]string) *Enum {
	e := &Enum{
		Column:  column,
		Labels:  labels,
		KPIKeys: kpiKeys,
		index:   make(map[string]string, len(labels)+len(aliases)),
	}
	for _, l := range labels {
		e.index[normalizeLabel(l)] = l
	}
	for alias, l := range aliases {
		e.index[normalizeLabel(alias)] = l
	}
	return e
}

// Resolve maps raw text to its canonical label. Unknown text resolves to
// Other with known=false.
func (e *Enum) Resolve(raw string) (label string, known bool) {
	if l, ok := e.index[normalizeLabel(raw)]; ok {
		return l, true
	}
	return Other, false
}

// All returns the labels followed by Other.
func (e *Enum) All() []string {
	out := make([]string, 0, len(e.Labels)+1)
	out = append(out, e.Labels...)
	return append(out, Other)
}

// KPIKey returns the indicator name counting records with the given label.
func (e *Enum) KPIKey(label string) string {
	for i, l := range e.Labels {
		if l == label {
			return e.KPIKeys[i]
		}
	}
	return "other_" + e.Column
}

// Rank returns the position of label in canonical order; Other sorts last.
func (e *Enum) Rank(label string) int {
	for i, l := range e.Labels {
		if l == label {
			return i
		}
	}
	return len(e.Labels)
}

// normalizeLabel folds case, separators and repeated whitespace.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ============================================================================
// TYPED ENUMERATIONS
// ============================================================================

// DisplacementStatus of the household.
type DisplacementStatus string

const (
	IDP           DisplacementStatus = "IDP"
	Returnee      DisplacementStatus = "Returnee"
	HostCommunity DisplacementStatus = "Host Community"
)

// Pathway is the durable solutions pathway.
type Pathway string

const (
	PathwayReturn           Pathway = "Return"
	PathwayLocalIntegration Pathway = "Local Integration"
	PathwayRelocation       Pathway = "Relocation"
)

// Stage is the ordered progress state within a pathway.
type Stage string

const (
	StageAssessment     Stage = "Assessment"
	StagePlanning       Stage = "Planning"
	StageImplementation Stage = "Implementation"
	StageAchieved       Stage = "Achieved"
)

// Gender of the head of household.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// ShelterStatus of the household.
type ShelterStatus string

const (
	ShelterEmergency    ShelterStatus = "Emergency"
	ShelterTransitional ShelterStatus = "Transitional"
	ShelterPermanent    ShelterStatus = "Permanent"
)

// DocumentationStatus of the household's civil documentation.
type DocumentationStatus string

const (
	DocumentationNone     DocumentationStatus = "None"
	DocumentationPartial  DocumentationStatus = "Partial"
	DocumentationComplete DocumentationStatus = "Complete"
)

// LivelihoodSupport records whether livelihood support was provided.
type LivelihoodSupport string

const (
	LivelihoodYes LivelihoodSupport = "Yes"
	LivelihoodNo  LivelihoodSupport = "No"
)

var (
	DisplacementEnum = newEnum(ColDisplacementStatus,
		[]string{string(IDP), string(Returnee), string(HostCommunity)},
		[]string{"idp_count", "returnee_count", "host_community_count"},
		map[string]string{"internally displaced": string(IDP), "host": string(HostCommunity)})

	PathwayEnum = newEnum(ColSolutionsPathway,
		[]string{string(PathwayReturn), string(PathwayLocalIntegration), string(PathwayRelocation)},
		[]string{"return_pathway", "local_integration_pathway", "relocation_pathway"},
		nil)

	StageEnum = newEnum(ColPathwayStage,
		[]string{string(StageAssessment), string(StagePlanning), string(StageImplementation), string(StageAchieved)},
		[]string{"assessment_stage", "planning_stage", "implementation_stage", "achieved_stage"},
		nil)

	GenderEnum = newEnum(ColGenderHoH,
		[]string{string(Male), string(Female)},
		[]string{"male_hoh_count", "female_hoh_count"},
		map[string]string{"m": string(Male), "f": string(Female)})

	ShelterEnum = newEnum(ColShelterStatus,
		[]string{string(ShelterEmergency), string(ShelterTransitional), string(ShelterPermanent)},
		[]string{"emergency_shelter", "transitional_shelter", "permanent_shelter"},
		nil)

	// An empty documentation cell means no documentation.
	DocumentationEnum = newEnum(ColDocumentationStatus,
		[]string{string(DocumentationNone), string(DocumentationPartial), string(DocumentationComplete)},
		[]string{"no_documentation", "partial_documentation", "complete_documentation"},
		map[string]string{"": string(DocumentationNone)})

	LivelihoodEnum = newEnum(ColLivelihoodSupport,
		[]string{string(LivelihoodYes), string(LivelihoodNo)},
		[]string{"livelihood_support_count", "no_livelihood_support_count"},
		map[string]string{"y": "Yes", "true": "Yes", "1": "Yes", "n": "No", "false": "No", "0": "No"})
)

// Enums lists every enumerated column in filter order.
var Enums = []*Enum{
	PathwayEnum,
	StageEnum,
	DisplacementEnum,
	GenderEnum,
	ShelterEnum,
	LivelihoodEnum,
	DocumentationEnum,
}

// EnumFor returns the closed label set of a column, if it has one.
func EnumFor(column string) (*Enum, bool) {
	for _, e := range Enums {
		if e.Column == column {
			return e, true
		}
	}
	return nil, false
}
