package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// LOADER — Parses beneficiary tables into []schema.Beneficiary
// ============================================================================
// The consumer reads the table from wherever it lives (file, SQL, upload).
// This helper validates the header, resolves every categorical value to its
// closed label once, derives the helper fields and rejects bad rows.
//
// Fatal:     missing required column, unparseable date/size/coordinate,
//            future date, duplicate beneficiary_id.
// Non-fatal: unknown categorical value → Other + UnknownCategoryWarning.
// ============================================================================

// Result is a loaded record set plus the non-fatal warnings raised while
// decoding it.
type Result struct {
	Records  []schema.Beneficiary
	Warnings []schema.UnknownCategoryWarning
}

// Option configures a load.
type Option func(*config)

type config struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock overrides the clock used to reject future registration dates.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithLogger logs each warning as it is raised.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ParseCSV reads a CSV table with a header row.
func ParseCSV(r io.Reader, opts ...Option) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &schema.SchemaError{Missing: append([]string(nil), schema.RequiredColumns...)}
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	dec, err := newDecoder(header, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", rowNum, err)
		}
		if isBlank(row) {
			rowNum--
			continue
		}
		if err := dec.decode(rowNum, row); err != nil {
			return nil, err
		}
	}

	return dec.result, nil
}

// DecodeRows decodes rows already split into cells, such as those scanned
// from a SQL table. header names the cells of every row.
func DecodeRows(header []string, rows [][]string, opts ...Option) (*Result, error) {
	dec, err := newDecoder(header, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := dec.decode(i+1, row); err != nil {
			return nil, err
		}
	}
	return dec.result, nil
}

// ============================================================================
// ROW DECODER
// ============================================================================

type decoder struct {
	cfg    *config
	cols   map[string]int
	seen   map[string]int
	today  time.Time
	result *Result
}

func newDecoder(header []string, cfg *config) (*decoder, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := toSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}

	var missing []string
	for _, c := range schema.RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &schema.SchemaError{Missing: missing}
	}

	return &decoder{
		cfg:    cfg,
		cols:   cols,
		seen:   make(map[string]int),
		today:  schema.Day(cfg.now()),
		result: &Result{},
	}, nil
}

func (d *decoder) cell(row []string, col string) string {
	i, ok := d.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (d *decoder) decode(rowNum int, row []string) error {
	fail := func(col string, err error) error {
		return &schema.ParseError{Row: rowNum, Column: col, Value: d.cell(row, col), Err: err}
	}

	b := schema.Beneficiary{
		ID: d.cell(row, schema.ColBeneficiaryID),
	}

	if b.ID == "" {
		return fail(schema.ColBeneficiaryID, schema.ErrMissingID)
	}
	if first, dup := d.seen[b.ID]; dup {
		return fail(schema.ColBeneficiaryID, fmt.Errorf("%w (first seen on row %d)", schema.ErrDuplicateID, first))
	}
	d.seen[b.ID] = rowNum

	b.Region = d.location(rowNum, row, schema.ColRegion)
	b.District = d.location(rowNum, row, schema.ColDistrict)

	size, err := parseHouseholdSize(d.cell(row, schema.ColHouseholdSize))
	if err != nil {
		return fail(schema.ColHouseholdSize, err)
	}
	b.HouseholdSize = size

	date, err := schema.ParseDate(d.cell(row, schema.ColRegistrationDate))
	if err != nil {
		return fail(schema.ColRegistrationDate, err)
	}
	if date.After(d.today) {
		return fail(schema.ColRegistrationDate, schema.ErrFutureDate)
	}
	b.RegistrationDate = date

	if b.Latitude, err = parseCoordinate(d.cell(row, schema.ColLatitude), 90); err != nil {
		return fail(schema.ColLatitude, err)
	}
	if b.Longitude, err = parseCoordinate(d.cell(row, schema.ColLongitude), 180); err != nil {
		return fail(schema.ColLongitude, err)
	}

	b.DisplacementStatus = schema.DisplacementStatus(d.resolve(rowNum, row, schema.DisplacementEnum))
	b.SolutionsPathway = schema.Pathway(d.resolve(rowNum, row, schema.PathwayEnum))
	b.PathwayStage = schema.Stage(d.resolve(rowNum, row, schema.StageEnum))
	b.GenderHoH = schema.Gender(d.resolve(rowNum, row, schema.GenderEnum))
	b.ShelterStatus = schema.ShelterStatus(d.resolve(rowNum, row, schema.ShelterEnum))
	b.DocumentationStatus = schema.DocumentationStatus(d.resolve(rowNum, row, schema.DocumentationEnum))
	b.LivelihoodSupport = schema.LivelihoodSupport(d.resolve(rowNum, row, schema.LivelihoodEnum))

	b.Derive()
	d.result.Records = append(d.result.Records, b)
	return nil
}

// location returns a region or district cell. Blank cells are bucketed as
// Other so they never count as a region of their own.
func (d *decoder) location(rowNum int, row []string, col string) string {
	v := d.cell(row, col)
	if v != "" {
		return v
	}
	d.warn(rowNum, col, v)
	return schema.Other
}

// resolve maps a categorical cell to its label, recording a warning for
// values outside the closed set.
func (d *decoder) resolve(rowNum int, row []string, e *schema.Enum) string {
	raw := d.cell(row, e.Column)
	label, known := e.Resolve(raw)
	if !known {
		d.warn(rowNum, e.Column, raw)
	}
	return label
}

func (d *decoder) warn(rowNum int, col, raw string) {
	w := schema.UnknownCategoryWarning{Row: rowNum, Column: col, Value: raw}
	d.result.Warnings = append(d.result.Warnings, w)
	d.cfg.logger.Warn("unknown category value",
		zap.Int("row", rowNum),
		zap.String("column", col),
		zap.String("value", raw),
	)
}

// ============================================================================
// VALUE PARSERS
// ============================================================================

func parseHouseholdSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheet exports often write whole numbers as 4.0.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || f > math.MaxInt32 {
			return 0, schema.ErrInvalidHouseholdSize
		}
		n = int(f)
	}
	if n < 1 {
		return 0, schema.ErrInvalidHouseholdSize
	}
	return n, nil
}

// parseCoordinate returns nil for an empty cell.
func parseCoordinate(s string, limit float64) (*float64, error) {
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) > limit {
		return nil, schema.ErrInvalidCoordinate
	}
	return &f, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
