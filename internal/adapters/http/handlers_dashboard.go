package web

import (
	"net/http"

	"lawoffice/internal/application/projections"
)

// handleDashboard serves GET /admin. It renders once every count has
// resolved; failed counts show as zero.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result := projections.QueryGetDashboard(r.Context(), projections.GetDashboardDeps{
		Clients:      stores.ClientStore,
		Cases:        stores.CaseStore,
		Posts:        stores.BlogStore,
		Appointments: stores.AppointmentStore,
		Inquiries:    stores.InquiryStore,
		Now:          timeNow,
	})
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderPage(w, r, "admin_dashboard.html", map[string]any{"Result": result})
}
