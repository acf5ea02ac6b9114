package engine

import (
	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never copies beneficiary records. It reads through this
// interface.
//
// Implementations:
//   RecordsView: wraps the loaded []schema.Beneficiary
//   SubView:     filtered or grouped subset (indices into parent, zero-copy)
//
// Every filter and group produces a SubView; the loaded slice is never
// mutated after the Dataset is built.
// ============================================================================

// RecordView provides indexed access to a record set.
// The engine calls these in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	At(index int) *schema.Beneficiary
	Dimension(index int, key string) string
	Measure(index int, key string) float64
}

// ============================================================================
// RECORDS VIEW — wraps []schema.Beneficiary
// ============================================================================

// RecordsView wraps a loaded record slice as a RecordView.
type RecordsView struct {
	records []schema.Beneficiary
}

// NewRecordsView creates a RecordView over records without copying them.
func NewRecordsView(records []schema.Beneficiary) RecordView {
	return &RecordsView{records: records}
}

func (v *RecordsView) Len() int { return len(v.records) }

func (v *RecordsView) At(i int) *schema.Beneficiary {
	if i < 0 || i >= len(v.records) {
		return nil
	}
	return &v.records[i]
}

func (v *RecordsView) Dimension(i int, key string) string {
	if b := v.At(i); b != nil {
		return b.Dimension(key)
	}
	return ""
}

func (v *RecordsView) Measure(i int, key string) float64 {
	if b := v.At(i); b != nil {
		return b.Measure(key)
	}
	return 0
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a subset of a parent RecordView.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) At(i int) *schema.Beneficiary {
	if i < 0 || i >= len(v.indices) {
		return nil
	}
	return v.parent.At(v.indices[i])
}

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

// Records copies the records of a view into a new slice, in view order.
func Records(view RecordView) []schema.Beneficiary {
	out := make([]schema.Beneficiary, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		out = append(out, *view.At(i))
	}
	return out
}
