package projections

import (
	"context"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/domain/dal"
)

// pageSource lists and counts the same query.
type pageSource[T any] interface {
	List(ctx context.Context, q dal.Query) ([]T, error)
	Count(ctx context.Context, q dal.Query) (int, error)
}

// listPage reads one page of q from the store with LIMIT/OFFSET.
// POST: the page is clamped to the last page before the read, so an
// out-of-range page shows the final rows rather than nothing
func listPage[T any](ctx context.Context, src pageSource[T], q dal.Query, page, size int) ([]T, listutil.PageInfo, error) {
	total, err := src.Count(ctx, q)
	if err != nil {
		return nil, listutil.PageInfo{}, err
	}
	info := listutil.NewPageInfo(page, size, total)
	rows, err := src.List(ctx, q.Page(info.Page, size))
	if err != nil {
		return nil, listutil.PageInfo{}, err
	}
	return rows, info, nil
}

// countBy tallies the rows matching q per value of column. Values with
// no rows are left out of the map.
func countBy(ctx context.Context, c Counter, q dal.Query, column string, values []string) (map[string]int, error) {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		n, err := c.Count(ctx, q.Where(dal.Eq(column, v)))
		if err != nil {
			return nil, err
		}
		if n > 0 {
			counts[v] = n
		}
	}
	return counts, nil
}

// exact reports whether a list filter value selects a single column value.
func exact(v string) bool {
	return v != "" && v != "all"
}
