// Package postgres talks to the development database. Connections are opened
// and closed per call: the bridge handles one request at a time and never
// needs a pool.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"mcpdev/internal/domain"
)

type Client struct {
	connString string
	logger     *zap.Logger
}

func NewClient(connString string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		connString: connString,
		logger:     logger.Named("postgres"),
	}
}

func (c *Client) open() (*sql.DB, error) {
	db, err := sql.Open("postgres", c.connString)
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, "postgres", "open connection", err)
	}
	return db, nil
}

// ListTables returns every base table and view in the public schema.
func (c *Client) ListTables(ctx context.Context) ([]domain.TableInfo, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name`)
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, "postgres", "list tables", err)
	}
	defer rows.Close()

	var tables []domain.TableInfo
	for rows.Next() {
		var t domain.TableInfo
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, domain.E(domain.CodeInternal, "postgres", "scan table row", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.E(domain.CodeUnavailable, "postgres", "list tables", err)
	}
	return tables, nil
}

// ReadTable returns up to domain.DefaultTableRowLimit rows of the named table
// as an indented JSON array. The name must match an introspected table
// exactly; the quoted identifier is never built from caller input directly.
func (c *Client) ReadTable(ctx context.Context, name string) (string, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return "", err
	}
	known := false
	for _, t := range tables {
		if t.Name == name {
			known = true
			break
		}
	}
	if !known {
		return "", domain.E(domain.CodeNotFound, "postgres", "table not found: "+name, domain.ErrTableNotFound)
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", pq.QuoteIdentifier(name), domain.DefaultTableRowLimit)
	rows, err := c.Query(ctx, query, nil)
	if err != nil {
		return "", err
	}
	return MarshalRows(rows)
}

// Query runs a row-returning statement with positional parameters and
// returns the rows as field-keyed maps.
func (c *Client) Query(ctx context.Context, query string, args []any) ([]map[string]any, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, "postgres", "query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "postgres", "read columns", err)
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, domain.E(domain.CodeInternal, "postgres", "scan row", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.E(domain.CodeUnavailable, "postgres", "query", err)
	}
	return out, nil
}

// Exec runs a non-row statement and returns the affected row count. The
// driver commits implicitly; there is no surrounding transaction.
func (c *Client) Exec(ctx context.Context, query string, args []any) (int64, error) {
	db, err := c.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, domain.E(domain.CodeUnavailable, "postgres", "exec", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.E(domain.CodeInternal, "postgres", "rows affected", err)
	}
	return affected, nil
}

// MarshalRows renders rows as an indented JSON array, matching the wire shape
// resource reads and execute_sql report.
func MarshalRows(rows []map[string]any) (string, error) {
	raw, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", domain.E(domain.CodeInternal, "postgres", "encode rows", err)
	}
	return string(raw), nil
}

// normalizeValue converts driver values that have no JSON-native form into
// strings; timestamps and numerics arrive as time.Time and []byte from pq.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
