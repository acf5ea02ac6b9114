package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFutureDate           = errors.New("registration date is in the future")
	ErrDuplicateID          = errors.New("duplicate beneficiary_id")
	ErrInvalidHouseholdSize = errors.New("household size must be a whole number of at least 1")
	ErrMissingID            = errors.New("beneficiary_id is empty")
	ErrInvalidCoordinate    = errors.New("coordinate is not a number in range")
)

// SchemaError reports required columns absent from a source header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// ParseError reports a row-level value that cannot be accepted. Row is the
// 1-based data row, not counting the header.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: column %s: value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownCategoryWarning records a categorical value outside its closed set.
// The record is kept with the value bucketed as Other.
type UnknownCategoryWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (w UnknownCategoryWarning) String() string {
	return fmt.Sprintf("row %d: unknown %s %q counted as %s", w.Row, w.Column, w.Value, Other)
}
