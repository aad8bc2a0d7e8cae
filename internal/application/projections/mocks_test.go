package projections

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/document"
	"lawoffice/internal/domain/inquiry"
	"lawoffice/internal/domain/legalcase"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func daysAgo(n int) time.Time { return fixedTime.AddDate(0, 0, -n) }

var errStoreDown = errors.New("store unavailable")

// applyQuery evaluates q over rows the way the SQL stores do. col returns
// a row's value for a column; strings, bools and times are comparable.
func applyQuery[T any](rows []T, q dal.Query, col func(T, string) any) []T {
	var out []T
	for _, r := range rows {
		if matchAll(r, q.Filters, col) {
			out = append(out, r)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := col(out[i], q.OrderBy), col(out[j], q.OrderBy)
			if q.Desc {
				return less(b, a)
			}
			return less(a, b)
		})
	}
	if q.Limit > 0 {
		if q.Offset >= len(out) {
			return nil
		}
		out = out[q.Offset:]
		if len(out) > q.Limit {
			out = out[:q.Limit]
		}
	}
	return out
}

func matchAll[T any](r T, filters []dal.Filter, col func(T, string) any) bool {
	for _, f := range filters {
		v := col(r, f.Column)
		switch f.Op {
		case dal.OpEq:
			if v != f.Value {
				return false
			}
		case dal.OpNeq:
			if v == f.Value {
				return false
			}
		case dal.OpGte:
			if less(v, f.Value) {
				return false
			}
		}
	}
	return true
}

func less(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		return x.Before(b.(time.Time))
	case string:
		return x < b.(string)
	}
	return false
}

func notFound(table, id string) error {
	return fmt.Errorf("%s %s: %w", table, id, apperror.ErrNotFound)
}

// --- blog ---

type mockBlogStore struct {
	posts   []blog.Post
	err     error
	queries []dal.Query
}

func postColumn(p blog.Post, c string) any {
	switch c {
	case "id":
		return p.ID
	case "published":
		return p.Published
	case "category":
		return p.Category
	case "published_at":
		return p.PublishedAt
	case "created_at":
		return p.CreatedAt
	}
	panic("unknown column " + c)
}

func (m *mockBlogStore) List(_ context.Context, q dal.Query) ([]blog.Post, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return applyQuery(m.posts, q, postColumn), nil
}

func (m *mockBlogStore) Count(_ context.Context, q dal.Query) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(applyQuery(m.posts, q, postColumn)), nil
}

func (m *mockBlogStore) GetByID(_ context.Context, id string) (blog.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return blog.Post{}, notFound("blog_posts", id)
}

func (m *mockBlogStore) GetBySlug(_ context.Context, slug string) (blog.Post, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return blog.Post{}, notFound("blog_posts", slug)
}

type countingCache struct {
	posts []blog.Post
	loads int
}

func (c *countingCache) Published(ctx context.Context, load func(context.Context) ([]blog.Post, error)) ([]blog.Post, error) {
	if c.posts != nil {
		return c.posts, nil
	}
	c.loads++
	posts, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.posts = posts
	return posts, nil
}

// --- clients and cases ---

type mockClientStore struct {
	clients []client.Client
	err     error
	queries []dal.Query
}

func clientColumn(c client.Client, col string) any {
	switch col {
	case "id":
		return c.ID
	case "active":
		return c.Active
	case "created_at":
		return c.CreatedAt
	}
	panic("unknown column " + col)
}

func (m *mockClientStore) List(_ context.Context, q dal.Query) ([]client.Client, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return applyQuery(m.clients, q, clientColumn), nil
}

func (m *mockClientStore) Count(_ context.Context, q dal.Query) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(applyQuery(m.clients, q, clientColumn)), nil
}

func (m *mockClientStore) GetByID(_ context.Context, id string) (client.Client, error) {
	for _, c := range m.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return client.Client{}, notFound("clients", id)
}

type mockCaseStore struct {
	cases []legalcase.WithClient
	err   error
	lists int
}

func caseColumn(c legalcase.WithClient, col string) any {
	switch col {
	case "id":
		return c.ID
	case "client_id":
		return c.ClientID
	case "status":
		return c.Status
	case "priority":
		return c.Priority
	case "created_at":
		return c.CreatedAt
	}
	panic("unknown column " + col)
}

func (m *mockCaseStore) List(_ context.Context, q dal.Query) ([]legalcase.WithClient, error) {
	m.lists++
	if m.err != nil {
		return nil, m.err
	}
	return applyQuery(m.cases, q, caseColumn), nil
}

func (m *mockCaseStore) Count(_ context.Context, q dal.Query) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(applyQuery(m.cases, q, caseColumn)), nil
}

func (m *mockCaseStore) GetByID(_ context.Context, id string) (legalcase.WithClient, error) {
	for _, c := range m.cases {
		if c.ID == id {
			return c, nil
		}
	}
	return legalcase.WithClient{}, notFound("cases", id)
}

// --- documents, inquiries, appointments ---

type mockDocumentStore struct {
	docs  []document.WithContext
	err   error
	lists int
}

func documentColumn(d document.WithContext, col string) any {
	switch col {
	case "case_id":
		return d.CaseID
	case "category":
		return d.Category
	case "uploaded_at":
		return d.UploadedAt
	}
	panic("unknown column " + col)
}

func (m *mockDocumentStore) List(_ context.Context, q dal.Query) ([]document.WithContext, error) {
	m.lists++
	if m.err != nil {
		return nil, m.err
	}
	return applyQuery(m.docs, q, documentColumn), nil
}

func (m *mockDocumentStore) Count(_ context.Context, q dal.Query) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(applyQuery(m.docs, q, documentColumn)), nil
}

type mockInquiryStore struct {
	inquiries []inquiry.Inquiry
	err       error
}

func inquiryColumn(i inquiry.Inquiry, col string) any {
	switch col {
	case "status":
		return i.Status
	case "created_at":
		return i.CreatedAt
	}
	panic("unknown column " + col)
}

func (m *mockInquiryStore) List(_ context.Context, q dal.Query) ([]inquiry.Inquiry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return applyQuery(m.inquiries, q, inquiryColumn), nil
}

func (m *mockInquiryStore) Count(_ context.Context, q dal.Query) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(applyQuery(m.inquiries, q, inquiryColumn)), nil
}

type mockAppointmentStore struct {
	appointments []appointment.WithClient
	err          error
	lists        int
}

func appointmentColumn(a appointment.WithClient, col string) any {
	switch col {
	case "case_id":
		return a.CaseID
	case "status":
		return a.Status
	case "start_time":
		return a.StartTime
	}
	panic("unknown column " + col)
}

func (m *mockAppointmentStore) List(_ context.Context, q dal.Query) ([]appointment.WithClient, error) {
	m.lists++
	if m.err != nil {
		return nil, m.err
	}
	return applyQuery(m.appointments, q, appointmentColumn), nil
}

func (m *mockAppointmentStore) Count(_ context.Context, q dal.Query) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(applyQuery(m.appointments, q, appointmentColumn)), nil
}
