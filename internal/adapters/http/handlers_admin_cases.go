package web

import (
	"context"
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/application/projections"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/legalcase"
)

func caseDeps() orchestrators.CaseDeps {
	return orchestrators.CaseDeps{
		CaseStore:     stores.CaseStore,
		ClientStore:   stores.ClientStore,
		DocumentStore: stores.DocumentStore,
		Events:        services.Events,
		GenerateID:    generateID,
		Now:           timeNow,
	}
}

// handleCaseList serves GET /admin/cases.
func handleCaseList(w http.ResponseWriter, r *http.Request) {
	params := listutil.Parse(r.URL.Query(), projections.CaseFilterStatus, projections.CaseFilterPriority)
	result, err := projections.QueryCaseList(r.Context(), params, stores.CaseStore)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderPage(w, r, "admin_cases.html", map[string]any{
		"Result":     result,
		"Statuses":   legalcase.ValidStatuses,
		"Priorities": legalcase.ValidPriorities,
	})
}

// handleCaseDetail serves GET /admin/cases/{id}?tab=.
func handleCaseDetail(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryCaseDetail(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("tab"), projections.CaseDetailDeps{
		CaseStore:        stores.CaseStore,
		DocumentStore:    stores.DocumentStore,
		AppointmentStore: stores.AppointmentStore,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	renderPage(w, r, "admin_case_detail.html", map[string]any{
		"Result":     result,
		"Statuses":   legalcase.ValidStatuses,
		"Priorities": legalcase.ValidPriorities,
		"Tabs":       []struct{ Key, Label string }{
			{projections.TabOverview, "Resumen"},
			{projections.TabDocuments, "Documentos"},
			{projections.TabActivities, "Actividad"},
		},
	})
}

// editorClients lists the clients the case editor offers: the active ones
// plus the current owner when editing.
func editorClients(ctx context.Context, current legalcase.WithClient) ([]client.Client, error) {
	list, err := stores.ClientStore.List(ctx, dal.Query{OrderBy: "first_name"}.Where(dal.Eq("active", true)))
	if err != nil {
		return nil, err
	}
	if current.ClientID == "" {
		return list, nil
	}
	for _, c := range list {
		if c.ID == current.ClientID {
			return list, nil
		}
	}
	return append(list, client.Client{ID: current.ClientID, FirstName: current.ClientName}), nil
}

func caseEditorPage(ctx context.Context, draft legalcase.Draft, current legalcase.WithClient, action string) (map[string]any, error) {
	clients, err := editorClients(ctx, current)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Draft":      draft,
		"Creating":   current.ID == "",
		"Action":     action,
		"Clients":    clients,
		"Types":      legalcase.Types,
		"Statuses":   legalcase.ValidStatuses,
		"Priorities": legalcase.ValidPriorities,
	}, nil
}

func handleCaseNew(w http.ResponseWriter, r *http.Request) {
	draft := legalcase.NewDraft(timeNow(), rand.Intn)
	draft.ClientID = r.URL.Query().Get("client_id")
	page, err := caseEditorPage(r.Context(), draft, legalcase.WithClient{}, r.URL.Path)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderPage(w, r, "admin_case_form.html", page)
}

func handleCaseEdit(w http.ResponseWriter, r *http.Request) {
	c, err := stores.CaseStore.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := caseEditorPage(r.Context(), legalcase.DraftFrom(c.Case), c, r.URL.Path)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderPage(w, r, "admin_case_form.html", page)
}

func readCaseDraft(r *http.Request) legalcase.Draft {
	return legalcase.Draft{
		CaseNumber:  r.FormValue("case_number"),
		ClientID:    r.FormValue("client_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		CaseType:    r.FormValue("case_type"),
		Status:      r.FormValue("status"),
		Priority:    r.FormValue("priority"),
		StartDate:   r.FormValue("start_date"),
		EndDate:     r.FormValue("end_date"),
		NextHearing: r.FormValue("next_hearing"),
		BillingRate: r.FormValue("billing_rate"),
		TotalHours:  r.FormValue("total_hours"),
		Notes:       r.FormValue("notes"),
	}
}

func handleCaseCreate(w http.ResponseWriter, r *http.Request) {
	saveCase(w, r, legalcase.WithClient{})
}

func handleCaseUpdate(w http.ResponseWriter, r *http.Request) {
	c, err := stores.CaseStore.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	saveCase(w, r, c)
}

func saveCase(w http.ResponseWriter, r *http.Request, current legalcase.WithClient) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	draft := readCaseDraft(r)
	saved, err := orchestrators.ExecuteSaveCase(r.Context(), orchestrators.SaveCaseInput{ID: current.ID, Draft: draft}, caseDeps())
	if err != nil {
		page, pageErr := caseEditorPage(r.Context(), draft, current, r.URL.Path)
		if pageErr != nil {
			internalError(w, r, pageErr)
			return
		}
		renderFormError(w, r, "admin_case_form.html", page, err)
		return
	}
	http.Redirect(w, r, "/admin/cases/"+saved.ID, http.StatusSeeOther)
}

// handleCaseFields serves POST /admin/cases/{id}/status, the list view's
// inline status and priority selectors.
func handleCaseFields(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.UpdateCaseFieldsInput{
		ID:       chi.URLParam(r, "id"),
		Status:   r.FormValue("status"),
		Priority: r.FormValue("priority"),
	}
	err := orchestrators.ExecuteUpdateCaseFields(r.Context(), input, caseDeps())
	if fields := apperror.FieldErrors(err); fields != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	afterToggle(w, r, "/admin/cases", input)
}

// handleCaseDelete serves GET and POST /admin/cases/{id}/delete. The
// case's documents are kept and detached.
func handleCaseDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, "el caso", "/admin/cases", func(in orchestrators.DeleteInput) error {
		return orchestrators.ExecuteDeleteCase(r.Context(), in, caseDeps())
	})
}
