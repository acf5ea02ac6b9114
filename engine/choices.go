package engine

import (
	"time"

	"github.com/spektr-org/solutions/schema"
)

// FilterOptions lists what a filter sidebar can offer for a view. Every
// categorical list starts with All.
type FilterOptions struct {
	Columns      map[string][]string `json:"columns"`
	DateMin      time.Time           `json:"date_min"`
	DateMax      time.Time           `json:"date_max"`
	HouseholdMin int                 `json:"household_min"`
	HouseholdMax int                 `json:"household_max"`
	QuickFilters []QuickFilter       `json:"quick_filters"`
}

// Options computes the sidebar choices. Values are sorted; districts are
// narrowed to region unless region is "" or All; stages and livelihood keep
// their fixed order regardless of presence.
func Options(view RecordView, region string) FilterOptions {
	opts := FilterOptions{
		Columns:      make(map[string][]string, len(schema.FilterColumns)),
		QuickFilters: QuickFilters,
	}

	for _, col := range schema.FilterColumns {
		var values []string
		switch col {
		case schema.ColDistrict:
			scope := view
			if region != "" && region != All {
				scope = Apply(view, Selection{Region: region})
			}
			values = UniqueValues(scope, col)
		case schema.ColPathwayStage:
			values = schema.StageEnum.Labels
		case schema.ColLivelihoodSupport:
			values = schema.LivelihoodEnum.Labels
		default:
			values = UniqueValues(view, col)
		}
		opts.Columns[col] = append([]string{All}, values...)
	}

	for i := 0; i < view.Len(); i++ {
		b := view.At(i)
		if i == 0 || b.RegistrationDate.Before(opts.DateMin) {
			opts.DateMin = b.RegistrationDate
		}
		if i == 0 || b.RegistrationDate.After(opts.DateMax) {
			opts.DateMax = b.RegistrationDate
		}
		if i == 0 || b.HouseholdSize < opts.HouseholdMin {
			opts.HouseholdMin = b.HouseholdSize
		}
		if i == 0 || b.HouseholdSize > opts.HouseholdMax {
			opts.HouseholdMax = b.HouseholdSize
		}
	}
	return opts
}
