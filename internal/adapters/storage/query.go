package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lawoffice/internal/domain/dal"
)

// Columns whitelists the columns a store lets callers filter and order
// on, mapping each public name to its SQL expression.
type Columns map[string]string

// where renders the WHERE clause of q against cols.
// POST: returns "" when q has no filters; unknown columns and operators
// are rejected before any SQL is produced
func where(q dal.Query, cols Columns) (string, []any, error) {
	if len(q.Filters) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(q.Filters))
	args := make([]any, 0, len(q.Filters))
	for _, f := range q.Filters {
		expr, ok := cols[f.Column]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter column %q", f.Column)
		}
		switch f.Op {
		case dal.OpEq, dal.OpNeq, dal.OpGte:
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
		if f.Value == nil {
			switch f.Op {
			case dal.OpEq:
				parts = append(parts, expr+" IS NULL")
			case dal.OpNeq:
				parts = append(parts, expr+" IS NOT NULL")
			default:
				return "", nil, fmt.Errorf("operator %q needs a value", f.Op)
			}
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", expr, f.Op))
		args = append(args, BindValue(f.Value))
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

// SelectSQL appends q's WHERE, ORDER BY, LIMIT and OFFSET clauses to base.
// PRE: base is a SELECT without those clauses
// POST: returns the full statement and its arguments
func SelectSQL(base string, q dal.Query, cols Columns) (string, []any, error) {
	clause, args, err := where(q, cols)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString(clause)
	if q.OrderBy != "" {
		expr, ok := cols[q.OrderBy]
		if !ok {
			return "", nil, fmt.Errorf("unknown order column %q", q.OrderBy)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(expr)
		if q.Desc {
			b.WriteString(" DESC")
		}
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
		if q.Offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, q.Offset)
		}
	}
	return b.String(), args, nil
}

// CountSQL renders a COUNT(*) over from filtered by q. Ordering and
// paging are ignored.
func CountSQL(from string, q dal.Query, cols Columns) (string, []any, error) {
	clause, args, err := where(q, cols)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + from + clause, args, nil
}

// UpdateSQL renders an UPDATE for p restricted to the updatable columns.
// updated_at is refreshed to now unless the table has no such column.
// PRE: p is non-empty
// POST: keys are rendered in sorted order so statements are stable
func UpdateSQL(table string, p dal.Patch, updatable map[string]bool, id string, now time.Time) (string, []any, error) {
	if len(p) == 0 {
		return "", nil, fmt.Errorf("empty patch for %s", table)
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		if !updatable[k] {
			return "", nil, fmt.Errorf("column %q of %s is not updatable", k, table)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, BindValue(p[k]))
	}
	if !now.IsZero() {
		sets = append(sets, "updated_at = ?")
		args = append(args, FormatTime(now))
	}
	args = append(args, id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", ")), args, nil
}

// UpdatableSet builds the lookup used by UpdateSQL.
func UpdatableSet(columns ...string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return set
}

// InsertSQL renders an INSERT of values with columns in sorted order.
// PRE: values is non-empty and holds stored-form values
func InsertSQL(table string, values dal.Patch) (string, []any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = BindValue(values[k])
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(keys, ", "), strings.Join(placeholders, ", ")), args
}
