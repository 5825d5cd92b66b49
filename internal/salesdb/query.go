package salesdb

import (
	"context"
	"database/sql"
	"encoding/csv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNotSelect is returned for statements that do not lexically begin with
// SELECT. The database is read-only from the agent's point of view.
var ErrNotSelect = eris.New("only SELECT queries are allowed")

// Select executes a read-only query and returns the column names and up to
// limit rows, every value rendered as a string.
func Select(ctx context.Context, db *sql.DB, query string, limit int) ([]string, [][]string, error) {
	q := strings.TrimSuffix(strings.TrimSpace(query), ";")
	if q == "" {
		return nil, nil, eris.New("query is required")
	}
	if !strings.HasPrefix(strings.ToLower(q), "select") {
		return nil, nil, ErrNotSelect
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, eris.Wrap(err, "salesdb: query")
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, eris.Wrap(err, "salesdb: columns")
	}

	var out [][]string
	for rows.Next() && len(out) < limit {
		raw := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, eris.Wrap(err, "salesdb: scan row")
		}
		rec := make([]string, len(cols))
		for i, v := range raw {
			rec[i] = v.String
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "salesdb: iterate rows")
	}

	return cols, out, nil
}

// RenderCSV formats a result set as CSV text for the agent tool. Returns
// "(no rows)" when the result is empty.
func RenderCSV(cols []string, rows [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if len(cols) > 0 {
		_ = w.Write(cols)
	}
	_ = w.WriteAll(rows)
	w.Flush()

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "(no rows)"
	}
	return out
}
