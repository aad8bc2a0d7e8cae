package projections

import (
	"context"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/document"
	"lawoffice/internal/domain/legalcase"
)

// Case list filter parameters.
const (
	CaseFilterStatus   = "status"
	CaseFilterPriority = "priority"
)

// Case detail tabs.
const (
	TabOverview   = "overview"
	TabDocuments  = "documents"
	TabActivities = "activities"
)

// CaseListResult is one page of the case list.
type CaseListResult struct {
	Params       listutil.Params
	Cases        []legalcase.WithClient
	StatusCounts map[string]int
	PageInfo     listutil.PageInfo
}

// QueryCaseList lists cases newest first, filtered by search over title,
// case number and client name plus status and priority. Status and
// priority go to the store; without a search term so does paging.
// StatusCounts covers every case regardless of the filters.
func QueryCaseList(ctx context.Context, params listutil.Params, store CaseReader) (CaseListResult, error) {
	q := dal.Query{}.Newest("created_at")
	if status := params.Filter(CaseFilterStatus); exact(status) {
		q = q.Where(dal.Eq("status", status))
	}
	if priority := params.Filter(CaseFilterPriority); exact(priority) {
		q = q.Where(dal.Eq("priority", priority))
	}

	var (
		page []legalcase.WithClient
		info listutil.PageInfo
		err  error
	)
	if params.Search == "" {
		page, info, err = listPage[legalcase.WithClient](ctx, store, q, params.Page, AdminPageSize)
	} else {
		var cases []legalcase.WithClient
		cases, err = store.List(ctx, q)
		page, info = listutil.Paginate(legalcase.Filter(cases, params.Search, "", ""), params.Page, AdminPageSize)
	}
	if err != nil {
		return CaseListResult{}, err
	}
	counts, err := countBy(ctx, store, dal.Query{}, "status", legalcase.ValidStatuses)
	if err != nil {
		return CaseListResult{}, err
	}
	return CaseListResult{Params: params, Cases: page, StatusCounts: counts, PageInfo: info}, nil
}

// CaseDetailDeps holds dependencies for the case detail view.
type CaseDetailDeps struct {
	CaseStore        CaseReader
	DocumentStore    DocumentReader
	AppointmentStore AppointmentReader
}

// CaseTabs loads the data behind each detail tab on first use and keeps
// it for the rest of the view. Not safe for concurrent use.
type CaseTabs struct {
	Case legalcase.WithClient

	deps CaseDetailDeps

	documents     []document.WithContext
	documentsErr  error
	documentsDone bool

	activities     []legalcase.Activity
	activitiesErr  error
	activitiesDone bool
}

// NewCaseTabs starts a view over c. Nothing is loaded yet.
func NewCaseTabs(c legalcase.WithClient, deps CaseDetailDeps) *CaseTabs {
	return &CaseTabs{Case: c, deps: deps}
}

// Documents returns the documents attached to the case, newest first.
// POST: the store is queried at most once per CaseTabs
func (t *CaseTabs) Documents(ctx context.Context) ([]document.WithContext, error) {
	if !t.documentsDone {
		t.documents, t.documentsErr = t.deps.DocumentStore.List(ctx,
			dal.Query{}.Where(dal.Eq("case_id", t.Case.ID)).Newest("uploaded_at"))
		t.documentsDone = true
	}
	return t.documents, t.documentsErr
}

// Activities returns the case feed, newest first: creation, last update,
// attached documents and the case's appointments.
// POST: derived at most once per CaseTabs; reuses the Documents load
func (t *CaseTabs) Activities(ctx context.Context) ([]legalcase.Activity, error) {
	if t.activitiesDone {
		return t.activities, t.activitiesErr
	}
	t.activitiesDone = true

	docs, err := t.Documents(ctx)
	if err != nil {
		t.activitiesErr = err
		return nil, err
	}
	appts, err := t.deps.AppointmentStore.List(ctx, dal.Query{OrderBy: "start_time"}.Where(dal.Eq("case_id", t.Case.ID)))
	if err != nil {
		t.activitiesErr = err
		return nil, err
	}
	t.activities = caseActivities(t.Case.Case, docs, appts)
	return t.activities, nil
}

func caseActivities(c legalcase.Case, docs []document.WithContext, appts []appointment.WithClient) []legalcase.Activity {
	items := []legalcase.Activity{{
		Kind:        legalcase.ActivityCreated,
		Title:       "Caso creado",
		Description: c.CaseNumber,
		At:          c.CreatedAt,
	}}
	if c.UpdatedAt.After(c.CreatedAt) {
		items = append(items, legalcase.Activity{
			Kind:        legalcase.ActivityUpdated,
			Title:       "Caso actualizado",
			Description: "Estado: " + c.Status,
			At:          c.UpdatedAt,
		})
	}
	for _, d := range docs {
		items = append(items, legalcase.Activity{
			Kind:        legalcase.ActivityDocument,
			Title:       "Documento subido",
			Description: d.Filename,
			At:          d.UploadedAt,
		})
	}
	for _, a := range appts {
		items = append(items, legalcase.Activity{
			Kind:        legalcase.ActivityAppointment,
			Title:       a.Title,
			Description: a.Type,
			At:          a.StartTime,
		})
	}
	legalcase.SortActivities(items)
	return items
}

// CaseDetailResult carries the case and the data of the selected tab.
type CaseDetailResult struct {
	Tab        string
	Case       legalcase.WithClient
	Documents  []document.WithContext
	Activities []legalcase.Activity
}

// QueryCaseDetail loads a case and only the data its selected tab needs.
// An unknown tab shows the overview.
// POST: an unknown id is ErrNotFound
func QueryCaseDetail(ctx context.Context, id, tab string, deps CaseDetailDeps) (CaseDetailResult, error) {
	c, err := deps.CaseStore.GetByID(ctx, id)
	if err != nil {
		return CaseDetailResult{}, err
	}
	tabs := NewCaseTabs(c, deps)
	result := CaseDetailResult{Tab: tab, Case: c}
	switch tab {
	case TabDocuments:
		result.Documents, err = tabs.Documents(ctx)
	case TabActivities:
		result.Activities, err = tabs.Activities(ctx)
	default:
		result.Tab = TabOverview
	}
	if err != nil {
		return CaseDetailResult{}, err
	}
	return result, nil
}
