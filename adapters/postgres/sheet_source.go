package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"xlinventory/domain/inventory"
	"xlinventory/internal"
	"xlinventory/ports"
)

// SheetSource reads inventory sheets from PostgreSQL tables. Each table is a
// sheet named after the table; columns are read in table order and rows in
// key order.
type SheetSource struct {
	db      *sqlx.DB
	tables  []string
	orderBy map[string][]string
	logger  *internal.Logger
}

// NewSheetSource creates a source over the given tables of an open database
func NewSheetSource(db *sqlx.DB, tables []string) *SheetSource {
	return &SheetSource{db: db, tables: tables, logger: internal.DefaultLogger}
}

// WithOrderBy sets the key columns that order each table's rows. Tables
// without keys are ordered by their first column.
func (s *SheetSource) WithOrderBy(orderBy map[string][]string) *SheetSource {
	s.orderBy = orderBy
	return s
}

// Connect opens a database connection and returns a source over the given tables
func Connect(ctx context.Context, databaseURL string, tables []string) (*SheetSource, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewSheetSource(db, tables), nil
}

// WithLogger replaces the source's logger
func (s *SheetSource) WithLogger(logger *internal.Logger) *SheetSource {
	s.logger = logger
	return s
}

// Describe names the source
func (s *SheetSource) Describe() string {
	return "postgres:" + strings.Join(s.tables, ",")
}

// Close releases the database connection
func (s *SheetSource) Close() error {
	return s.db.Close()
}

// LoadDataset reads every configured table in the configured order
func (s *SheetSource) LoadDataset(ctx context.Context) (*inventory.Dataset, error) {
	ds := inventory.NewDataset()
	for _, table := range s.tables {
		rows, err := s.readTable(ctx, table)
		if err != nil {
			return nil, err
		}
		ds.AddSheet(table, rows...)
	}
	return ds, nil
}

func (s *SheetSource) readTable(ctx context.Context, table string) ([]*inventory.Row, error) {
	startTime := time.Now()
	query := tableQuery(table, s.orderBy[table])

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	var out []*inventory.Row
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		row := inventory.NewRow()
		for i, raw := range values {
			value, ok := columnValue(raw, columnTypes[i].DatabaseTypeName())
			if !ok {
				continue
			}
			row.Set(columnTypes[i].Name(), value)
		}
		if row.Len() > 0 {
			out = append(out, row)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	s.logger.Debug("[PostgresSource] table %s read (%d rows) in %.2fms", table, len(out), float64(time.Since(startTime).Nanoseconds())/1e6)
	return out, nil
}

// tableQuery selects every column of table, ordered by the key columns or,
// without keys, by the first column
func tableQuery(table string, keys []string) string {
	order := "1"
	if len(keys) > 0 {
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = pq.QuoteIdentifier(k)
		}
		order = strings.Join(quoted, ", ")
	}
	return fmt.Sprintf("SELECT * FROM %s ORDER BY %s", pq.QuoteIdentifier(table), order)
}

// columnValue converts a scanned column into a cell value. NULL and empty
// text report false so the field is absent from the row, as an empty cell
// would be.
func columnValue(raw any, dbType string) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case int64, float64, bool:
		return v, true
	case []byte:
		return textValue(string(v), dbType)
	case string:
		return textValue(v, dbType)
	case time.Time:
		if dbType == "DATE" {
			return v.Format(time.DateOnly), true
		}
		return v.Format(time.RFC3339), true
	default:
		return fmt.Sprint(v), true
	}
}

func textValue(text, dbType string) (any, bool) {
	if text == "" {
		return nil, false
	}
	if dbType == "NUMERIC" || dbType == "DECIMAL" {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f, true
		}
	}
	return text, true
}

// Ensure SheetSource implements SheetSourcePort
var _ ports.SheetSourcePort = (*SheetSource)(nil)
