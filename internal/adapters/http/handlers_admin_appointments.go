package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/application/projections"
	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/dal"
)

func appointmentDeps() orchestrators.AppointmentDeps {
	return orchestrators.AppointmentDeps{
		AppointmentStore: stores.AppointmentStore,
		Location:         officeLoc,
		GenerateID:       generateID,
		Now:              timeNow,
	}
}

// appointmentPage loads the upcoming list next to the editor.
func appointmentPage(ctx context.Context, draft appointment.Draft, action string, editing bool) (map[string]any, error) {
	upcoming, err := projections.QueryUpcomingAppointments(ctx, timeNow(), stores.AppointmentStore)
	if err != nil {
		return nil, err
	}
	clients, err := stores.ClientStore.List(ctx, dal.Query{OrderBy: "first_name"}.Where(dal.Eq("active", true)))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Upcoming": upcoming,
		"Draft":    draft,
		"Action":   action,
		"Editing":  editing,
		"Clients":  clients,
		"Types":    appointment.ValidTypes,
		"Statuses": appointment.ValidStatuses,
	}, nil
}

// handleAppointmentList serves GET /admin/appointments.
func handleAppointmentList(w http.ResponseWriter, r *http.Request) {
	if !isHTMLRequest(r) {
		upcoming, err := projections.QueryUpcomingAppointments(r.Context(), timeNow(), stores.AppointmentStore)
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, upcoming)
		return
	}
	draft := appointment.Draft{Type: appointment.TypeConsultation, CaseID: r.URL.Query().Get("case_id")}
	page, err := appointmentPage(r.Context(), draft, "/admin/appointments", false)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderPage(w, r, "admin_appointments.html", page)
}

func handleAppointmentEdit(w http.ResponseWriter, r *http.Request) {
	a, err := stores.AppointmentStore.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	draft := appointment.Draft{
		ClientID:    a.ClientID,
		CaseID:      a.CaseID,
		Title:       a.Title,
		Description: a.Description,
		StartTime:   a.StartTime.In(officeLoc).Format(appointment.FormLayout),
		EndTime:     a.EndTime.In(officeLoc).Format(appointment.FormLayout),
		Type:        a.Type,
		Status:      a.Status,
		Location:    a.Location,
	}
	page, err := appointmentPage(r.Context(), draft, r.URL.Path, true)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderPage(w, r, "admin_appointments.html", page)
}

func handleAppointmentCreate(w http.ResponseWriter, r *http.Request) {
	saveAppointment(w, r, "")
}

func handleAppointmentUpdate(w http.ResponseWriter, r *http.Request) {
	saveAppointment(w, r, chi.URLParam(r, "id"))
}

func saveAppointment(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	draft := appointment.Draft{
		ClientID:    r.FormValue("client_id"),
		CaseID:      r.FormValue("case_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		StartTime:   r.FormValue("start_time"),
		EndTime:     r.FormValue("end_time"),
		Type:        r.FormValue("type"),
		Status:      r.FormValue("status"),
		Location:    r.FormValue("location"),
	}
	_, err := orchestrators.ExecuteSaveAppointment(r.Context(), orchestrators.SaveAppointmentInput{ID: id, Draft: draft}, appointmentDeps())
	if err != nil {
		page, pageErr := appointmentPage(r.Context(), draft, r.URL.Path, id != "")
		if pageErr != nil {
			internalError(w, r, pageErr)
			return
		}
		renderFormError(w, r, "admin_appointments.html", page, err)
		return
	}
	http.Redirect(w, r, "/admin/appointments", http.StatusSeeOther)
}
