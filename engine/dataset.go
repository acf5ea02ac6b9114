package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/solutions/schema"
)

// Dataset is one immutable load of the beneficiary table. Every filter and
// report reads from View(); a reload builds a new Dataset.
type Dataset struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time
	Warnings []schema.UnknownCategoryWarning

	records []schema.Beneficiary
	view    RecordView
}

// NewDataset takes ownership of records. Callers must not modify the slice
// afterwards.
func NewDataset(source string, records []schema.Beneficiary, warnings []schema.UnknownCategoryWarning) *Dataset {
	return &Dataset{
		ID:       uuid.New(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Warnings: warnings,
		records:  records,
		view:     NewRecordsView(records),
	}
}

// View returns the full record set.
func (d *Dataset) View() RecordView { return d.view }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }
