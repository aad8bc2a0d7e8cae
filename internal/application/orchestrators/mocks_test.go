package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"lawoffice/internal/adapters/email"
	"lawoffice/internal/adapters/events"
	"lawoffice/internal/adapters/objectstore"
	"lawoffice/internal/domain/account"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/document"
	"lawoffice/internal/domain/inquiry"
	"lawoffice/internal/domain/legalcase"
	"lawoffice/internal/domain/profile"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

func notFound(table, id string) error {
	return fmt.Errorf("%s %s: %w", table, id, apperror.ErrNotFound)
}

var errStoreDown = errors.New("store unavailable")

// --- accounts and profiles ---

type mockAccountStore struct {
	accounts map[string]account.Account // keyed by email
	saves    int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

// GetByEmail implements AccountStoreForLogin.
// PRE: email is normalized
// POST: returns the account or an error wrapping apperror.ErrNotFound
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.accounts[email]
	if !ok {
		return account.Account{}, notFound("accounts", email)
	}
	return a, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, notFound("accounts", id)
}

// Save implements AccountStoreForLogin.
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.accounts[a.Email] = a
	return nil
}

func (m *mockAccountStore) Delete(_ context.Context, id string) error {
	for email, a := range m.accounts {
		if a.ID == id {
			delete(m.accounts, email)
			return nil
		}
	}
	return notFound("accounts", id)
}

type mockProfileStore struct {
	profiles map[string]profile.Profile
	err      error
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[string]profile.Profile)}
}

func (m *mockProfileStore) Save(_ context.Context, p profile.Profile) error {
	if m.err != nil {
		return m.err
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileStore) CountByRole(_ context.Context, role string) (int, error) {
	n := 0
	for _, p := range m.profiles {
		if p.Role == role {
			n++
		}
	}
	return n, nil
}

// --- blog ---

type mockBlogStore struct {
	posts   map[string]blog.Post
	patches []dal.Patch
	calls   int
}

func newMockBlogStore() *mockBlogStore {
	return &mockBlogStore{posts: make(map[string]blog.Post)}
}

func (m *mockBlogStore) GetByID(_ context.Context, id string) (blog.Post, error) {
	m.calls++
	p, ok := m.posts[id]
	if !ok {
		return blog.Post{}, notFound("blog_posts", id)
	}
	return p, nil
}

func (m *mockBlogStore) slugTaken(p blog.Post) bool {
	for _, other := range m.posts {
		if other.Slug == p.Slug && other.ID != p.ID {
			return true
		}
	}
	return false
}

func (m *mockBlogStore) Insert(_ context.Context, p blog.Post) error {
	m.calls++
	if m.slugTaken(p) {
		return apperror.NewStoreError("insert", "blog_posts", "2067", true, errors.New("UNIQUE constraint failed: blog_posts.slug"))
	}
	m.posts[p.ID] = p
	return nil
}

func (m *mockBlogStore) Save(_ context.Context, p blog.Post) error {
	m.calls++
	if m.slugTaken(p) {
		return apperror.NewStoreError("save", "blog_posts", "2067", true, errors.New("UNIQUE constraint failed: blog_posts.slug"))
	}
	m.posts[p.ID] = p
	return nil
}

func (m *mockBlogStore) Update(_ context.Context, id string, patch dal.Patch) error {
	m.calls++
	p, ok := m.posts[id]
	if !ok {
		return notFound("blog_posts", id)
	}
	if v, ok := patch["published"].(bool); ok {
		p.Published = v
	}
	if v, ok := patch["published_at"].(time.Time); ok {
		p.PublishedAt = v
	}
	m.posts[id] = p
	m.patches = append(m.patches, patch)
	return nil
}

func (m *mockBlogStore) Delete(_ context.Context, id string) error {
	m.calls++
	if _, ok := m.posts[id]; !ok {
		return notFound("blog_posts", id)
	}
	delete(m.posts, id)
	return nil
}

type mockIndex struct {
	indexed []string
	deleted []string
	err     error
}

func (m *mockIndex) IndexPost(_ context.Context, p blog.Post) error {
	m.indexed = append(m.indexed, p.ID)
	return m.err
}

func (m *mockIndex) DeletePost(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

type mockCache struct{ invalidations int }

func (m *mockCache) Invalidate() { m.invalidations++ }

// --- clients, cases, documents ---

type mockClientStore struct {
	clients map[string]client.Client
	calls   int
}

func newMockClientStore(clients ...client.Client) *mockClientStore {
	m := &mockClientStore{clients: make(map[string]client.Client)}
	for _, c := range clients {
		m.clients[c.ID] = c
	}
	return m
}

func (m *mockClientStore) List(_ context.Context, q dal.Query) ([]client.Client, error) {
	m.calls++
	out := []client.Client{}
	for _, c := range m.clients {
		if matchesFilters(q, map[string]any{"active": c.Active, "id": c.ID}) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClientStore) GetByID(_ context.Context, id string) (client.Client, error) {
	m.calls++
	c, ok := m.clients[id]
	if !ok {
		return client.Client{}, notFound("clients", id)
	}
	return c, nil
}

func (m *mockClientStore) Insert(_ context.Context, c client.Client) error {
	m.calls++
	m.clients[c.ID] = c
	return nil
}

func (m *mockClientStore) Save(_ context.Context, c client.Client) error {
	m.calls++
	m.clients[c.ID] = c
	return nil
}

func (m *mockClientStore) Update(_ context.Context, id string, patch dal.Patch) error {
	m.calls++
	c, ok := m.clients[id]
	if !ok {
		return notFound("clients", id)
	}
	if v, ok := patch["active"].(bool); ok {
		c.Active = v
	}
	m.clients[id] = c
	return nil
}

func (m *mockClientStore) Delete(_ context.Context, id string) error {
	m.calls++
	if _, ok := m.clients[id]; !ok {
		return notFound("clients", id)
	}
	delete(m.clients, id)
	return nil
}

type mockCaseStore struct {
	cases map[string]legalcase.WithClient
	calls int
}

func newMockCaseStore(cases ...legalcase.Case) *mockCaseStore {
	m := &mockCaseStore{cases: make(map[string]legalcase.WithClient)}
	for _, c := range cases {
		m.cases[c.ID] = legalcase.WithClient{Case: c}
	}
	return m
}

func (m *mockCaseStore) GetByID(_ context.Context, id string) (legalcase.WithClient, error) {
	m.calls++
	c, ok := m.cases[id]
	if !ok {
		return legalcase.WithClient{}, notFound("cases", id)
	}
	return c, nil
}

func (m *mockCaseStore) numberTaken(c legalcase.Case) bool {
	for _, other := range m.cases {
		if other.CaseNumber == c.CaseNumber && other.ID != c.ID {
			return true
		}
	}
	return false
}

func (m *mockCaseStore) Insert(_ context.Context, c legalcase.Case) error {
	m.calls++
	if m.numberTaken(c) {
		return apperror.NewStoreError("insert", "cases", "2067", true, errors.New("UNIQUE constraint failed: cases.case_number"))
	}
	m.cases[c.ID] = legalcase.WithClient{Case: c}
	return nil
}

func (m *mockCaseStore) Save(_ context.Context, c legalcase.Case) error {
	m.calls++
	m.cases[c.ID] = legalcase.WithClient{Case: c}
	return nil
}

func (m *mockCaseStore) Update(_ context.Context, id string, patch dal.Patch) error {
	m.calls++
	c, ok := m.cases[id]
	if !ok {
		return notFound("cases", id)
	}
	if v, ok := patch["status"].(string); ok {
		c.Status = v
	}
	if v, ok := patch["priority"].(string); ok {
		c.Priority = v
	}
	m.cases[id] = c
	return nil
}

func (m *mockCaseStore) Delete(_ context.Context, id string) error {
	m.calls++
	if _, ok := m.cases[id]; !ok {
		return notFound("cases", id)
	}
	delete(m.cases, id)
	return nil
}

func (m *mockCaseStore) Count(_ context.Context, q dal.Query) (int, error) {
	m.calls++
	n := 0
	for _, c := range m.cases {
		if matchesFilters(q, map[string]any{"client_id": c.ClientID, "status": c.Status}) {
			n++
		}
	}
	return n, nil
}

type mockDocumentStore struct {
	docs  map[string]document.WithContext
	calls int
	err   error
}

func newMockDocumentStore(docs ...document.Document) *mockDocumentStore {
	m := &mockDocumentStore{docs: make(map[string]document.WithContext)}
	for _, d := range docs {
		m.docs[d.ID] = document.WithContext{Document: d}
	}
	return m
}

func (m *mockDocumentStore) GetByID(_ context.Context, id string) (document.WithContext, error) {
	m.calls++
	d, ok := m.docs[id]
	if !ok {
		return document.WithContext{}, notFound("documents", id)
	}
	return d, nil
}

func (m *mockDocumentStore) Insert(_ context.Context, d document.Document) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.docs[d.ID] = document.WithContext{Document: d}
	return nil
}

func (m *mockDocumentStore) Delete(_ context.Context, id string) error {
	m.calls++
	if _, ok := m.docs[id]; !ok {
		return notFound("documents", id)
	}
	delete(m.docs, id)
	return nil
}

func (m *mockDocumentStore) DetachCase(_ context.Context, caseID string) (int, error) {
	m.calls++
	n := 0
	for id, d := range m.docs {
		if d.CaseID == caseID {
			d.CaseID = ""
			m.docs[id] = d
			n++
		}
	}
	return n, nil
}

type mockObjects struct {
	stored  map[string]string
	deleted []string
	putErr  error
	delErr  error
}

func newMockObjects() *mockObjects {
	return &mockObjects{stored: make(map[string]string)}
}

func (m *mockObjects) Put(_ context.Context, bucket, filename string, r io.Reader, limit int64) (objectstore.Object, error) {
	if m.putErr != nil {
		return objectstore.Object{}, m.putErr
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return objectstore.Object{}, err
	}
	if int64(len(body)) > limit {
		return objectstore.Object{}, objectstore.ErrTooLarge
	}
	path := bucket + "/obj-" + filename
	m.stored[path] = string(body)
	return objectstore.Object{Path: path, URL: "/uploads/" + path, Size: int64(len(body))}, nil
}

func (m *mockObjects) Delete(_ context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.stored, path)
	return nil
}

// --- inquiries, appointments, side effects ---

type mockInquiryStore struct {
	inquiries map[string]inquiry.Inquiry
	err       error
}

func newMockInquiryStore() *mockInquiryStore {
	return &mockInquiryStore{inquiries: make(map[string]inquiry.Inquiry)}
}

func (m *mockInquiryStore) Insert(_ context.Context, i inquiry.Inquiry) error {
	if m.err != nil {
		return m.err
	}
	m.inquiries[i.ID] = i
	return nil
}

func (m *mockInquiryStore) Update(_ context.Context, id string, patch dal.Patch) error {
	i, ok := m.inquiries[id]
	if !ok {
		return notFound("contact_inquiries", id)
	}
	if v, ok := patch["status"].(string); ok {
		i.Status = v
	}
	m.inquiries[id] = i
	return nil
}

type mockAppointmentStore struct {
	appointments map[string]appointment.Appointment
}

func newMockAppointmentStore() *mockAppointmentStore {
	return &mockAppointmentStore{appointments: make(map[string]appointment.Appointment)}
}

func (m *mockAppointmentStore) GetByID(_ context.Context, id string) (appointment.WithClient, error) {
	a, ok := m.appointments[id]
	if !ok {
		return appointment.WithClient{}, notFound("appointments", id)
	}
	return appointment.WithClient{Appointment: a}, nil
}

func (m *mockAppointmentStore) Insert(_ context.Context, a appointment.Appointment) error {
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentStore) Save(_ context.Context, a appointment.Appointment) error {
	m.appointments[a.ID] = a
	return nil
}

type mockPublisher struct {
	published []events.Envelope
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, ev events.Envelope) error {
	m.published = append(m.published, ev)
	return m.err
}

type mockSender struct {
	sent []email.SendRequest
	err  error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.sent = append(m.sent, req)
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	return email.SendResult{MessageID: "msg-1", SentAt: fixedTime}, nil
}

// matchesFilters evaluates Eq filters of q against a row's column values.
func matchesFilters(q dal.Query, row map[string]any) bool {
	for _, f := range q.Filters {
		if f.Op == dal.OpEq && row[f.Column] != f.Value {
			return false
		}
	}
	return true
}
