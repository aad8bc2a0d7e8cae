package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"lawoffice/internal/adapters/http/middleware"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/document"
	"lawoffice/internal/domain/inquiry"
	"lawoffice/internal/domain/legalcase"
)

//go:embed templates/*.html
var templateFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error, reports it and returns a generic
// message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	middleware.ReportError(r, err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// respondError maps a use case failure: missing rows get the not-found
// view, everything else is internal.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if apperror.IsNotFound(err) {
		renderNotFound(w, r)
		return
	}
	internalError(w, r, err)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

// confirmed reports an explicit confirmation on a delete request.
func confirmed(r *http.Request) bool {
	return r.Method == http.MethodPost && r.FormValue("confirm") == "yes"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(officeLoc).Format("02/01/2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(officeLoc).Format("02/01/2006 15:04")
}

var statusLabels = map[string]string{
	legalcase.StatusActive:          "Activo",
	legalcase.StatusPending:         "Pendiente",
	legalcase.StatusClosed:          "Cerrado",
	legalcase.StatusOnHold:          "En espera",
	legalcase.PriorityLow:           "Baja",
	legalcase.PriorityMedium:        "Media",
	legalcase.PriorityHigh:          "Alta",
	legalcase.PriorityUrgent:        "Urgente",
	appointment.StatusScheduled:     "Programada",
	appointment.StatusCompleted:     "Completada",
	appointment.StatusCancelled:     "Cancelada",
	appointment.TypeConsultation:    "Consulta",
	appointment.TypeCourt:           "Audiencia",
	appointment.TypeMeeting:         "Reunión",
	appointment.TypeDeadline:        "Plazo",
	inquiry.StatusContacted:         "Contactado",
	inquiry.StatusConverted:         "Convertido",
	document.CategoryContract:       "Contrato",
	document.CategoryEvidence:       "Prueba",
	document.CategoryCorrespondence: "Correspondencia",
	document.CategoryOther:          "Otro",
}

func label(value string) string {
	if l, ok := statusLabels[value]; ok {
		return l
	}
	return value
}

// fieldError returns the message for field from a Violations value, or ""
// for anything else (including a missing Errors key).
func fieldError(errs any, field string) string {
	if v, ok := errs.(apperror.Violations); ok {
		return v[field]
	}
	return ""
}

func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	snap := middleware.SnapshotFromContext(r.Context())

	funcMap := template.FuncMap{
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"csrfToken":    func() string { return csrf.Token(r) },
		"isLoggedIn":   func() bool { return snap.AccountID != "" },
		"isAdmin":      snap.IsAdmin,
		"currentEmail": func() string { return snap.Email },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"categoryLabel":  blog.CategoryLabel,
		"label":          label,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"fileSize":       func(n int64) string { return humanize.Bytes(uint64(n)) },
		"join":           strings.Join,
		"fieldError":     fieldError,
		"currentPath":    func() string { return r.URL.Path },
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/partials.html", "templates/"+templateName)
	if err != nil {
		internalError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func renderPage(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplate(w, r, http.StatusOK, templateName, data)
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusNotFound, "not_found.html", map[string]any{"Path": r.URL.Path})
}

// renderInvalid re-renders a form with its field errors.
func renderInvalid(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any, err error) {
	data["Errors"] = apperror.FieldErrors(err)
	renderTemplate(w, r, http.StatusUnprocessableEntity, templateName, data)
}

// saveFailedMessage is shown above a form whose submission hit a store error.
const saveFailedMessage = "No se pudo guardar. Inténtelo de nuevo en unos minutos."

// renderFormFailure logs and reports err, then re-renders the form with
// the submitted values and an inline message.
func renderFormFailure(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any, err error) {
	slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	middleware.ReportError(r, err)
	data["Errors"] = apperror.Violations{"": saveFailedMessage}
	renderTemplate(w, r, http.StatusInternalServerError, templateName, data)
}

// renderFormError routes a failed submission: field errors re-render with
// 422, missing rows get the not-found view, anything else keeps the form
// with an inline message.
func renderFormError(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any, err error) {
	switch {
	case apperror.FieldErrors(err) != nil:
		renderInvalid(w, r, templateName, data, err)
	case apperror.IsNotFound(err):
		renderNotFound(w, r)
	default:
		renderFormFailure(w, r, templateName, data, err)
	}
}

// parseForm parses urlencoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

const maxFormMemory = 8 << 20

// renderConfirm asks for an explicit confirmation before a delete.
func renderConfirm(w http.ResponseWriter, r *http.Request, status int, what, cancel string, err error) {
	renderTemplate(w, r, status, "confirm_delete.html", map[string]any{
		"What":   what,
		"Action": r.URL.Path,
		"Cancel": cancel,
		"Errors": apperror.FieldErrors(err),
	})
}

// handleDelete runs a confirmed delete and redirects to back. Without
// confirmation it renders the confirmation page and del reports
// ErrConfirmationRequired before touching any store.
func handleDelete(w http.ResponseWriter, r *http.Request, what, back string, del func(orchestrators.DeleteInput) error) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
	}
	err := del(orchestrators.DeleteInput{ID: chi.URLParam(r, "id"), Confirmed: confirmed(r)})
	switch {
	case err == nil:
		http.Redirect(w, r, back, http.StatusSeeOther)
	case errors.Is(err, orchestrators.ErrConfirmationRequired):
		renderConfirm(w, r, http.StatusOK, what, back, nil)
	case apperror.FieldErrors(err) != nil:
		renderConfirm(w, r, http.StatusUnprocessableEntity, what, back, err)
	default:
		respondError(w, r, err)
	}
}

// afterToggle answers a list toggle: HTML callers go back to the list,
// API callers get the updated row.
func afterToggle(w http.ResponseWriter, r *http.Request, back string, row any) {
	if isHTMLRequest(r) {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r)
}

// handleLoading is the gate placeholder for sessions whose profile is
// not loaded yet. The gate has already set Retry-After.
func handleLoading(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusServiceUnavailable, "loading.html", map[string]any{
		"Retry": middleware.RetryAfterSeconds,
		"Path":  r.URL.RequestURI(),
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
