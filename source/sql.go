package source

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/spektr-org/solutions/config"
	"github.com/spektr-org/solutions/helpers"
)

const pingTimeout = 10 * time.Second

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQL reads the beneficiary table through database/sql. Columns are matched
// by name, so the table may carry extra columns and any column order.
type SQL struct {
	db     *sql.DB
	driver string
	table  string
	opts   []helpers.Option
}

// OpenSQL connects with driver "pgx" or "sqlite" and checks the connection.
func OpenSQL(ctx context.Context, driver, dsn, table string, opts ...helpers.Option) (*SQL, error) {
	if driver != "pgx" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	s, err := NewSQL(ctx, db, driver, table, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open database handle.
func NewSQL(ctx context.Context, db *sql.DB, driver, table string, opts ...helpers.Option) (*SQL, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &SQL{db: db, driver: driver, table: table, opts: opts}, nil
}

func (s *SQL) Kind() string { return config.SourceSQL }

func (s *SQL) Name() string { return s.driver + ":" + s.table }

// Close releases the database handle.
func (s *SQL) Close() error { return s.db.Close() }

// Fingerprint hashes every cell of the table, so in-place updates are seen
// as well as inserts and deletes. Row order does not matter.
func (s *SQL) Fingerprint(ctx context.Context) (string, error) {
	header, table, err := s.scan(ctx)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(table))
	for i, row := range table {
		lines[i] = encodeRow(row)
	}
	slices.Sort(lines)

	h := sha256.New()
	_, _ = io.WriteString(h, encodeRow(header))
	for _, line := range lines {
		_, _ = io.WriteString(h, line)
	}
	return fmt.Sprintf("%d:%x", len(table), h.Sum(nil)), nil
}

func encodeRow(row []string) string {
	var b strings.Builder
	for _, cell := range row {
		b.WriteString(strconv.Quote(cell))
		b.WriteByte(',')
	}
	b.WriteByte('\n')
	return b.String()
}

// Load selects every row and decodes it like a CSV table.
func (s *SQL) Load(ctx context.Context) (*helpers.Result, error) {
	header, table, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	res, err := helpers.DecodeRows(header, table, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.table, err)
	}
	return res, nil
}

// scan reads the table as CSV-style cells.
func (s *SQL) scan(ctx context.Context) ([]string, [][]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s`, s.table))
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", s.table, err)
	}

	var table [][]string
	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellString(v)
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.table, err)
	}
	return header, table, nil
}

// cellString renders a scanned value the way it would appear in a CSV cell.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format("2006-01-02")
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprint(v)
}
