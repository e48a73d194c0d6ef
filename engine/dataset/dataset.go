package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/hybridqa/engine/infra/sqlite"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/georgysavva/scany/v2/sqlscan"
)

// forbiddenKeywords reject a query when found anywhere in its upper-cased text.
var forbiddenKeywords = []string{"UPDATE", "DELETE", "DROP", "INSERT", "ALTER"}

// SchemaTables is the table vocabulary described to the query generator.
var SchemaTables = []string{"orders", "order_items", "products", "customers", "categories"}

const (
	schemaSeparator = "--------------------"
	timeLayout      = "2006-01-02 15:04:05"
)

// Dataset runs read-only queries against the SQLite database.
type Dataset struct {
	db     *sql.DB
	tables []string
}

// New wraps an open database.
func New(db *sql.DB) *Dataset {
	return &Dataset{db: db, tables: SchemaTables}
}

// Open opens the database described by cfg.
func Open(ctx context.Context, cfg *sqlite.Config) (*Dataset, error) {
	db, err := sqlite.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func (d *Dataset) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// IsUnsafe reports whether query contains a mutating keyword.
func IsUnsafe(query string) bool {
	upper := strings.ToUpper(query)
	for _, kw := range forbiddenKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// Execute runs query once. It never returns a Go error: failures are part of
// the outcome and retries are the caller's business.
func (d *Dataset) Execute(ctx context.Context, query string) Outcome {
	if IsUnsafe(query) {
		return ErrorOutcome(ErrorUnsafe, UnsafeQueryMessage)
	}
	rows, err := d.query(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Debug("Query failed", "error", err)
		return ErrorOutcome(ErrorExecution, "SQL Error: "+err.Error())
	}
	return RowsOutcome(rows)
}

func (d *Dataset) query(ctx context.Context, query string) ([]Row, error) {
	rs, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	columns, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	var rows []Row
	for rs.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		rows = append(rows, Row{columns: columns, values: values})
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(timeLayout)
	default:
		return v
	}
}

type columnInfo struct {
	CID  int    `db:"cid"`
	Name string `db:"name"`
}

// DescribeSchema lists the columns of each vocabulary table. Failures are
// reported inside the returned text.
func (d *Dataset) DescribeSchema(ctx context.Context) string {
	lines := make([]string, 0, len(d.tables)*3)
	for _, table := range d.tables {
		columns, err := d.tableColumns(ctx, table)
		if err != nil {
			return "Error retrieving schema: " + err.Error()
		}
		lines = append(lines,
			"Table: "+table,
			"Columns: "+strings.Join(columns, ", "),
			schemaSeparator,
		)
	}
	return strings.Join(lines, "\n")
}

func (d *Dataset) tableColumns(ctx context.Context, table string) ([]string, error) {
	query, args, err := squirrel.Select("cid", "name").
		From(fmt.Sprintf("pragma_table_info('%s')", strings.ReplaceAll(table, "'", "''"))).
		OrderBy("cid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building schema query: %w", err)
	}
	var infos []columnInfo
	if err := sqlscan.Select(ctx, d.db, &infos, query, args...); err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}
