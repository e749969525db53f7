package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/internal/domain/normalize"
	"github.com/okian/stemmap/pkg/metrics"
)

// SQL drivers accepted by OpenSQLSource.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource reads events from a table holding the schema v1 columns.
type SQLSource struct {
	db    *sql.DB
	table string
	query string
}

// OpenSQLSource opens dsn with driver and reads table.
func OpenSQLSource(driver, dsn, table string) (*SQLSource, error) {
	if driver != DriverSQLite && driver != DriverPgx {
		return nil, fmt.Errorf("%w: sql driver %q", ErrUnsupportedKind, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrFetch, driver, err)
	}
	s, err := NewSQLSource(db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSource reads table through an existing handle.
func NewSQLSource(db *sql.DB, table string) (*SQLSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", ErrUnsupportedKind, table)
	}
	query := "SELECT " + strings.Join(normalize.ColumnNames[:], ", ") + " FROM " + table
	return &SQLSource{db: db, table: table, query: query}, nil
}

func (s *SQLSource) Name() string { return "sql:" + s.table }

// Events runs the projection and normalizes every row.
func (s *SQLSource) Events(ctx context.Context) ([]model.Event, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSourceFetch("sql", float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		metrics.RecordSourceFetchError("sql", "fetch")
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, s.Name(), err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	cells := make([]normalize.Cell, normalize.ColumnCount)
	ptrs := make([]any, normalize.ColumnCount)
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		for i := range cells {
			cells[i] = nil
		}
		if err := rows.Scan(ptrs...); err != nil {
			metrics.RecordSourceFetchError("sql", "malformed")
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, s.Name(), err)
		}
		events = append(events, normalize.Row(cells))
	}
	if err := rows.Err(); err != nil {
		metrics.RecordSourceFetchError("sql", "fetch")
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, s.Name(), err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// Close releases the database handle.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
