package dal

import "testing"

func TestQueryBuilders(t *testing.T) {
	base := Query{}.Where(Eq("published", true))
	q := base.Where(Neq("id", "p1")).Newest("created_at").Page(3, 6)

	if len(base.Filters) != 1 {
		t.Errorf("Where mutated the receiver: %v", base.Filters)
	}
	if len(q.Filters) != 2 || q.Filters[1].Op != OpNeq {
		t.Errorf("Filters = %v", q.Filters)
	}
	if q.OrderBy != "created_at" || !q.Desc {
		t.Errorf("order = %q desc=%v", q.OrderBy, q.Desc)
	}
	if q.Limit != 6 || q.Offset != 12 {
		t.Errorf("Limit/Offset = %d/%d, want 6/12", q.Limit, q.Offset)
	}
	if p := (Query{}).Page(0, 10); p.Offset != 0 {
		t.Errorf("page 0 should clamp to first page, offset = %d", p.Offset)
	}
}
