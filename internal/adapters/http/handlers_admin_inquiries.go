package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/application/projections"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/inquiry"
)

// handleInquiryList serves GET /admin/inquiries.
func handleInquiryList(w http.ResponseWriter, r *http.Request) {
	params := listutil.Parse(r.URL.Query(), projections.InquiryFilterStatus)
	result, err := projections.QueryInquiryList(r.Context(), params, stores.InquiryStore)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderPage(w, r, "admin_inquiries.html", map[string]any{
		"Result":   result,
		"Statuses": inquiry.ValidStatuses,
	})
}

// handleInquiryStatus serves POST /admin/inquiries/{id}/status.
func handleInquiryStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	status := r.FormValue("status")
	err := orchestrators.ExecuteUpdateInquiryStatus(r.Context(), id, status, stores.InquiryStore)
	if fields := apperror.FieldErrors(err); fields != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	afterToggle(w, r, "/admin/inquiries", map[string]string{"id": id, "status": status})
}
