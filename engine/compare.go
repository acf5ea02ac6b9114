package engine

import (
	"github.com/spektr-org/solutions/schema"
)

// PeriodTotals are the headline counts of one registration period.
type PeriodTotals struct {
	Period        DateRange `json:"period"`
	Beneficiaries int       `json:"beneficiaries"`
	Achieved      int       `json:"achieved"`
	Individuals   int       `json:"individuals"`
}

// Comparison sets one period against another.
type Comparison struct {
	Current  PeriodTotals `json:"current"`
	Previous PeriodTotals `json:"previous"`

	BeneficiaryChange int `json:"beneficiary_change"`
	AchievedChange    int `json:"achieved_change"`
	IndividualsChange int `json:"individuals_change"`

	// Percent changes, 1 decimal; 0 when the previous value is 0.
	BeneficiaryChangePercent float64 `json:"beneficiary_change_percent"`
	AchievedChangePercent    float64 `json:"achieved_change_percent"`
	IndividualsChangePercent float64 `json:"individuals_change_percent"`
}

// ComparePeriods totals two registration-date ranges of view.
func ComparePeriods(view RecordView, current, previous DateRange) Comparison {
	cur := periodTotals(view, current)
	prev := periodTotals(view, previous)
	return Comparison{
		Current:                  cur,
		Previous:                 prev,
		BeneficiaryChange:        cur.Beneficiaries - prev.Beneficiaries,
		AchievedChange:           cur.Achieved - prev.Achieved,
		IndividualsChange:        cur.Individuals - prev.Individuals,
		BeneficiaryChangePercent: percent(cur.Beneficiaries-prev.Beneficiaries, prev.Beneficiaries),
		AchievedChangePercent:    percent(cur.Achieved-prev.Achieved, prev.Achieved),
		IndividualsChangePercent: percent(cur.Individuals-prev.Individuals, prev.Individuals),
	}
}

// PreviousPeriod returns the range of equal length ending the day before r
// starts. Both bounds of r must be set.
func PreviousPeriod(r DateRange) DateRange {
	start, end := schema.Day(r.Start), schema.Day(r.End)
	days := int(end.Sub(start).Hours()/24) + 1
	prevEnd := start.AddDate(0, 0, -1)
	return DateRange{Start: prevEnd.AddDate(0, 0, -(days - 1)), End: prevEnd}
}

func periodTotals(view RecordView, r DateRange) PeriodTotals {
	t := PeriodTotals{Period: r}
	for i := 0; i < view.Len(); i++ {
		b := view.At(i)
		if !r.Contains(b.RegistrationDate) {
			continue
		}
		t.Beneficiaries++
		t.Individuals += b.HouseholdSize
		if b.IsAchieved {
			t.Achieved++
		}
	}
	return t
}
