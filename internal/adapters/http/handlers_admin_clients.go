package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/application/projections"
	"lawoffice/internal/domain/client"
)

func clientDeps() orchestrators.ClientDeps {
	return orchestrators.ClientDeps{
		ClientStore: stores.ClientStore,
		CaseStore:   stores.CaseStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

// handleClientList serves GET /admin/clients.
func handleClientList(w http.ResponseWriter, r *http.Request) {
	params := listutil.Parse(r.URL.Query(), projections.ClientFilterActive)
	result, err := projections.QueryClientList(r.Context(), params, stores.ClientStore)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderPage(w, r, "admin_clients.html", map[string]any{"Result": result})
}

// handleClientDetail serves GET /admin/clients/{id}.
func handleClientDetail(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryClientDetail(r.Context(), chi.URLParam(r, "id"), projections.ClientDetailDeps{
		ClientStore: stores.ClientStore,
		CaseStore:   stores.CaseStore,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	renderPage(w, r, "admin_client_detail.html", map[string]any{
		"Client": result.Client,
		"Cases":  result.Cases,
	})
}

func clientEditorPage(draft client.Draft, creating bool, action string) map[string]any {
	return map[string]any{
		"Draft":    draft,
		"Creating": creating,
		"Action":   action,
		"Types":    client.ValidTypes,
	}
}

func handleClientNew(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "admin_client_form.html", clientEditorPage(client.NewDraft(), true, r.URL.Path))
}

func handleClientEdit(w http.ResponseWriter, r *http.Request) {
	c, err := stores.ClientStore.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	renderPage(w, r, "admin_client_form.html", clientEditorPage(client.DraftFrom(c), false, r.URL.Path))
}

func readClientDraft(r *http.Request) client.Draft {
	return client.Draft{
		FirstName:            r.FormValue("first_name"),
		LastName:             r.FormValue("last_name"),
		Email:                r.FormValue("email"),
		Phone:                r.FormValue("phone"),
		ClientType:           r.FormValue("client_type"),
		CompanyName:          r.FormValue("company_name"),
		Position:             r.FormValue("position"),
		IdentificationType:   r.FormValue("identification_type"),
		IdentificationNumber: r.FormValue("identification_number"),
		DateOfBirth:          r.FormValue("date_of_birth"),
		Address:              r.FormValue("address"),
		City:                 r.FormValue("city"),
		State:                r.FormValue("state"),
		PostalCode:           r.FormValue("postal_code"),
		Country:              r.FormValue("country"),
		Active:               r.FormValue("active") == "on",
		Notes:                r.FormValue("notes"),
	}
}

func handleClientCreate(w http.ResponseWriter, r *http.Request) {
	saveClient(w, r, "")
}

func handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	saveClient(w, r, chi.URLParam(r, "id"))
}

func saveClient(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	draft := readClientDraft(r)
	c, err := orchestrators.ExecuteSaveClient(r.Context(), orchestrators.SaveClientInput{ID: id, Draft: draft}, clientDeps())
	if err != nil {
		renderFormError(w, r, "admin_client_form.html", clientEditorPage(draft, id == "", r.URL.Path), err)
		return
	}
	http.Redirect(w, r, "/admin/clients/"+c.ID, http.StatusSeeOther)
}

// handleClientToggle serves POST /admin/clients/{id}/toggle.
func handleClientToggle(w http.ResponseWriter, r *http.Request) {
	c, err := orchestrators.ExecuteToggleClientActive(r.Context(), chi.URLParam(r, "id"), clientDeps())
	if err != nil {
		respondError(w, r, err)
		return
	}
	afterToggle(w, r, "/admin/clients", c)
}

// handleClientDelete serves GET and POST /admin/clients/{id}/delete.
// Clients that own cases are refused on the confirmation page.
func handleClientDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, "el cliente", "/admin/clients", func(in orchestrators.DeleteInput) error {
		return orchestrators.ExecuteDeleteClient(r.Context(), in, clientDeps())
	})
}
