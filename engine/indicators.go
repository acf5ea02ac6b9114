package engine

import (
	"fmt"
	"math"
)

// IndicatorTarget is a programme target measured against one KPI.
type IndicatorTarget struct {
	Key    string  `json:"key" yaml:"key"`
	Title  string  `json:"title" yaml:"title"`
	Group  string  `json:"group" yaml:"group"`
	Target float64 `json:"target" yaml:"target"`
	// Scale multiplies the KPI before comparison, e.g. 100 to compare a
	// fraction against a percentage target.
	Scale float64 `json:"scale,omitempty" yaml:"scale"`
	Color string  `json:"color,omitempty" yaml:"color"`
}

// IndicatorProgress is one target with its current value.
type IndicatorProgress struct {
	IndicatorTarget
	Current  float64 `json:"current"`
	Progress float64 `json:"progress"` // [0, 1]
	Label    string  `json:"label"`    // "312 / 500 (62.4%)"
}

// Indicator groups.
const (
	GroupProgramme = "Programme Indicators"
	GroupCoverage  = "Coverage Indicators"
)

// DefaultTargets are the programme targets used when none are configured.
var DefaultTargets = []IndicatorTarget{
	{Key: "solutions_achieved", Title: "Solutions Achieved", Group: GroupProgramme, Target: 100, Color: "#27AE60"},
	{Key: "livelihood_support_count", Title: "Livelihood Support Provided", Group: GroupProgramme, Target: 300, Color: "#3498DB"},
	{Key: "complete_documentation", Title: "Complete Documentation", Group: GroupProgramme, Target: 250, Color: "#9B59B6"},
	{Key: "permanent_shelter", Title: "Permanent Shelter", Group: GroupProgramme, Target: 80, Color: "#1ABC9C"},
	{Key: "total_beneficiaries", Title: "Total Beneficiaries Reached", Group: GroupCoverage, Target: 500, Color: "#3498DB"},
	{Key: "female_hoh_percentage", Title: "Female-Headed Households (%)", Group: GroupCoverage, Target: 40, Scale: 100, Color: "#E74C3C"},
	{Key: "regions_covered", Title: "Regions Covered", Group: GroupCoverage, Target: 5, Color: "#F39C12"},
	{Key: "districts_covered", Title: "Districts Covered", Group: GroupCoverage, Target: 10, Color: "#2ECC71"},
}

// Progress returns current/target capped at 1; a target of 0 or less yields 0.
func Progress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(current/target, 1)
}

// Indicators measures kpis against targets. Unknown KPI keys are an error.
func Indicators(kpis KPIs, targets []IndicatorTarget) ([]IndicatorProgress, error) {
	values := kpis.Map()
	out := make([]IndicatorProgress, 0, len(targets))
	for _, t := range targets {
		v, ok := values[t.Key]
		if !ok {
			return nil, fmt.Errorf("indicator %q: unknown KPI %q", t.Title, t.Key)
		}
		if t.Scale != 0 {
			v *= t.Scale
		}
		p := Progress(v, t.Target)
		out = append(out, IndicatorProgress{
			IndicatorTarget: t,
			Current:         v,
			Progress:        p,
			Label: fmt.Sprintf("%s / %s (%.1f%%)",
				FormatInt(int(math.Round(v))), FormatInt(int(math.Round(t.Target))), p*100),
		})
	}
	return out, nil
}
