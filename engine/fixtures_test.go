package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spektr-org/solutions/schema"
)

// ── Test Data ─────────────────────────────────────────────────────────────────

type recOpt func(*schema.Beneficiary)

func region(r, d string) recOpt {
	return func(b *schema.Beneficiary) { b.Region, b.District = r, d }
}

func stage(s schema.Stage) recOpt {
	return func(b *schema.Beneficiary) { b.PathwayStage = s }
}

func pathway(p schema.Pathway) recOpt {
	return func(b *schema.Beneficiary) { b.SolutionsPathway = p }
}

func status(s schema.DisplacementStatus) recOpt {
	return func(b *schema.Beneficiary) { b.DisplacementStatus = s }
}

func size(n int) recOpt {
	return func(b *schema.Beneficiary) { b.HouseholdSize = n }
}

func female() recOpt {
	return func(b *schema.Beneficiary) { b.GenderHoH = schema.Female }
}

func registered(y int, m time.Month, d int) recOpt {
	return func(b *schema.Beneficiary) { b.RegistrationDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
}

func located(lat, lon float64) recOpt {
	return func(b *schema.Beneficiary) { b.Latitude, b.Longitude = &lat, &lon }
}

var recSeq int

// rec builds one derived record with neutral defaults.
func rec(opts ...recOpt) schema.Beneficiary {
	recSeq++
	b := schema.Beneficiary{
		ID:                  fmt.Sprintf("T%04d", recSeq),
		Region:              "North",
		District:            "N1",
		DisplacementStatus:  schema.IDP,
		SolutionsPathway:    schema.PathwayReturn,
		PathwayStage:        schema.StageAssessment,
		HouseholdSize:       4,
		GenderHoH:           schema.Male,
		ShelterStatus:       schema.ShelterEmergency,
		DocumentationStatus: schema.DocumentationNone,
		LivelihoodSupport:   schema.LivelihoodNo,
		RegistrationDate:    time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
	for _, o := range opts {
		o(&b)
	}
	b.Derive()
	return b
}

func viewOf(records ...schema.Beneficiary) RecordView {
	return NewRecordsView(records)
}

func pick[T any](r *rand.Rand, xs []T) T { return xs[r.Intn(len(xs))] }

// generate builds n varied records, including Other-bucket values.
func generate(n int, seed int64) []schema.Beneficiary {
	r := rand.New(rand.NewSource(seed))
	regions := map[string][]string{
		"North": {"N1", "N2"},
		"South": {"S1", "S2", "S3"},
		"East":  {"E1"},
	}
	regionNames := []string{"North", "South", "East"}
	withOther := func(labels []string) []string { return append(append([]string(nil), labels...), schema.Other) }

	out := make([]schema.Beneficiary, 0, n)
	for i := 0; i < n; i++ {
		reg := pick(r, regionNames)
		b := schema.Beneficiary{
			ID:                  fmt.Sprintf("G%05d", i),
			Region:              reg,
			District:            pick(r, regions[reg]),
			DisplacementStatus:  schema.DisplacementStatus(pick(r, withOther(schema.DisplacementEnum.Labels))),
			SolutionsPathway:    schema.Pathway(pick(r, withOther(schema.PathwayEnum.Labels))),
			PathwayStage:        schema.Stage(pick(r, withOther(schema.StageEnum.Labels))),
			HouseholdSize:       1 + r.Intn(9),
			GenderHoH:           schema.Gender(pick(r, schema.GenderEnum.Labels)),
			ShelterStatus:       schema.ShelterStatus(pick(r, withOther(schema.ShelterEnum.Labels))),
			DocumentationStatus: schema.DocumentationStatus(pick(r, schema.DocumentationEnum.Labels)),
			LivelihoodSupport:   schema.LivelihoodSupport(pick(r, schema.LivelihoodEnum.Labels)),
			RegistrationDate:    time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, r.Intn(540)),
		}
		if r.Intn(4) > 0 {
			lat, lon := 1+r.Float64()*10, 41+r.Float64()*9
			b.Latitude, b.Longitude = &lat, &lon
		}
		b.Derive()
		out = append(out, b)
	}
	return out
}

func ids(view RecordView) []string {
	out := make([]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		out = append(out, view.At(i).ID)
	}
	return out
}
