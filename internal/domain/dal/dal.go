// Package dal carries the list, count and partial-update requests that
// use cases hand to stores. Stores decide which columns they accept.
package dal

// Op is a comparison operator accepted in a Filter.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "<>"
	OpGte Op = ">="
)

// Filter restricts a query on one column.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows where column equals value. A nil value matches NULL.
func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

// Neq matches rows where column differs from value.
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }

// Gte matches rows where column is greater than or equal to value.
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }

// Query is the list/count request shared by every store.
// Limit 0 means no limit; Offset only applies together with a Limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Where returns a copy of q with f appended.
func (q Query) Where(f ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), f...)
	return q
}

// Newest orders by column descending.
func (q Query) Newest(column string) Query {
	q.OrderBy, q.Desc = column, true
	return q
}

// Page sets Limit and Offset for a 1-based page of size.
func (q Query) Page(page, size int) Query {
	if page < 1 {
		page = 1
	}
	q.Limit = size
	q.Offset = (page - 1) * size
	return q
}

// Patch is a partial update: column name to new value.
type Patch map[string]any
