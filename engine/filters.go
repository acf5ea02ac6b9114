package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// FILTERS — Selection-Based Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL constraints per record in one loop.
// Returns a SubView (index list into parent) with no data copy.
// ============================================================================

// All is the sentinel meaning "no filter" for a categorical field.
const All = "All"

// Selection is a filter choice. Categorical fields left "" or All do not
// constrain; set fields match the canonical label exactly. All constraints
// are AND-combined.
type Selection struct {
	Region              string `json:"region,omitempty"`
	District            string `json:"district,omitempty"`
	SolutionsPathway    string `json:"solutions_pathway,omitempty"`
	PathwayStage        string `json:"pathway_stage,omitempty"`
	DisplacementStatus  string `json:"displacement_status,omitempty"`
	GenderHoH           string `json:"gender_hoh,omitempty"`
	ShelterStatus       string `json:"shelter_status,omitempty"`
	DocumentationStatus string `json:"documentation_status,omitempty"`
	LivelihoodSupport   string `json:"livelihood_support,omitempty"`

	Dates         DateRange `json:"dates"`
	HouseholdSize SizeRange `json:"household_size"`
}

// DateRange is an inclusive range of calendar days. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"date_start"`
	End   time.Time `json:"date_end"`
}

// Contains reports whether the day of t lies in the range.
func (r DateRange) Contains(t time.Time) bool {
	d := schema.Day(t)
	if !r.Start.IsZero() && d.Before(schema.Day(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(schema.Day(r.End)) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

func (r DateRange) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "…"
		}
		return t.Format("2006-01-02")
	}
	return format(r.Start) + " – " + format(r.End)
}

// SizeRange is an inclusive household size range. A zero bound is open.
type SizeRange struct {
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

// Contains reports whether n lies in the range.
func (r SizeRange) Contains(n int) bool {
	if r.Min > 0 && n < r.Min {
		return false
	}
	if r.Max > 0 && n > r.Max {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r SizeRange) IsZero() bool { return r.Min <= 0 && r.Max <= 0 }

// field returns the Selection field backing a categorical column.
func (s *Selection) field(col string) *string {
	switch col {
	case schema.ColRegion:
		return &s.Region
	case schema.ColDistrict:
		return &s.District
	case schema.ColSolutionsPathway:
		return &s.SolutionsPathway
	case schema.ColPathwayStage:
		return &s.PathwayStage
	case schema.ColDisplacementStatus:
		return &s.DisplacementStatus
	case schema.ColGenderHoH:
		return &s.GenderHoH
	case schema.ColShelterStatus:
		return &s.ShelterStatus
	case schema.ColDocumentationStatus:
		return &s.DocumentationStatus
	case schema.ColLivelihoodSupport:
		return &s.LivelihoodSupport
	}
	return nil
}

// Get returns the value selected for a categorical column, or "".
func (s Selection) Get(col string) string {
	if p := s.field(col); p != nil {
		return *p
	}
	return ""
}

// Set assigns a categorical column. Unknown columns are an error.
func (s *Selection) Set(col, value string) error {
	p := s.field(col)
	if p == nil {
		return fmt.Errorf("column %q is not filterable", col)
	}
	*p = value
	return nil
}

// IsEmpty reports whether the selection constrains nothing.
func (s Selection) IsEmpty() bool {
	return len(s.constraints()) == 0 && s.Dates.IsZero() && s.HouseholdSize.IsZero()
}

type constraint struct {
	column string
	value  string
}

// constraints lists the active categorical constraints with enumerated values
// canonicalised, so "idp" selects IDP.
func (s Selection) constraints() []constraint {
	var out []constraint
	for _, col := range schema.FilterColumns {
		v := strings.TrimSpace(s.Get(col))
		if v == "" || v == All {
			continue
		}
		if e, ok := schema.EnumFor(col); ok {
			if label, known := e.Resolve(v); known {
				v = label
			}
		}
		out = append(out, constraint{column: col, value: v})
	}
	return out
}

// ActiveLabels returns one "Column Name: value" tag per active categorical
// constraint, in sidebar order. Date and size ranges are not listed.
func (s Selection) ActiveLabels() []string {
	var labels []string
	for _, c := range s.constraints() {
		labels = append(labels, fmt.Sprintf("%s: %s", titleKey(c.column), c.value))
	}
	return labels
}

// titleKey turns "solutions_pathway" into "Solutions Pathway".
func titleKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ============================================================================
// APPLY
// ============================================================================

// Apply returns a view of records matching every constraint of sel, in the
// input order. An empty selection returns view itself.
func Apply(view RecordView, sel Selection) RecordView {
	cons := sel.constraints()
	if len(cons) == 0 && sel.Dates.IsZero() && sel.HouseholdSize.IsZero() {
		return view
	}

	// Single pass: a record passes if it matches every constraint
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		b := view.At(i)
		pass := sel.Dates.Contains(b.RegistrationDate) && sel.HouseholdSize.Contains(b.HouseholdSize)
		for _, c := range cons {
			if !pass {
				break
			}
			pass = b.Dimension(c.column) == c.value
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// ============================================================================
// QUICK FILTERS
// ============================================================================

// QuickFilter is a one-click preset layered onto a Selection.
type QuickFilter string

const (
	QuickAchieved  QuickFilter = "achieved"
	QuickIDP       QuickFilter = "idp"
	QuickFemaleHoH QuickFilter = "female_hoh"
	QuickEmergency QuickFilter = "emergency"
)

// QuickFilters lists the presets in display order.
var QuickFilters = []QuickFilter{QuickAchieved, QuickIDP, QuickFemaleHoH, QuickEmergency}

// ParseQuickFilter validates a preset name. "" is accepted as no preset.
func ParseQuickFilter(s string) (QuickFilter, error) {
	q := QuickFilter(strings.ToLower(strings.TrimSpace(s)))
	if q == "" {
		return "", nil
	}
	for _, known := range QuickFilters {
		if q == known {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown quick filter %q", s)
}

// ApplyTo returns sel with the preset's constraint set.
func (q QuickFilter) ApplyTo(sel Selection) Selection {
	switch q {
	case QuickAchieved:
		sel.PathwayStage = string(schema.StageAchieved)
	case QuickIDP:
		sel.DisplacementStatus = string(schema.IDP)
	case QuickFemaleHoH:
		sel.GenderHoH = string(schema.Female)
	case QuickEmergency:
		sel.ShelterStatus = string(schema.ShelterEmergency)
	}
	return sel
}
