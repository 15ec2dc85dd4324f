package query

import (
	"context"
	"database/sql"
	"time"

	"github.com/vglug/intake-backend/internal/errs"
)

// Row is one result row keyed by output alias. Values are scalars:
// string, int64, float64, bool, or nil. Chart shaping happens at the
// presentation boundary; the executor returns uniform rows for every
// widget type.
type Row map[string]any

// Execute runs a compiled plan and returns its rows. The plan's limit
// is part of the rendered statement, so bounding happens in the store,
// never client-side. A store failure comes back as an ExecutionError;
// an empty result is not an error.
func Execute(ctx context.Context, db *sql.DB, p *Plan) ([]Row, error) {
	stmt, args := p.SQL()

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errs.NewExecutionError("query could not run", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errs.NewExecutionError("query could not run", err)
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.NewExecutionError("result row could not be read", err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewExecutionError("result set could not be read", err)
	}
	return out, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
