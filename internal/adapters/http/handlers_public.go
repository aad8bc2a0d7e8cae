package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/application/projections"
	"lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/inquiry"
)

// practiceAreas are shown on the home and services pages.
var practiceAreas = []struct {
	Title       string
	Description string
}{
	{"Derecho Civil", "Contratos, arrendamientos, herencias y reclamaciones de cantidad."},
	{"Derecho Penal", "Defensa y acusación particular en todas las fases del procedimiento."},
	{"Derecho Familiar", "Divorcios, custodia, pensiones y acuerdos de mediación."},
	{"Derecho Laboral", "Despidos, reclamaciones salariales y negociación colectiva."},
	{"Derecho Empresarial", "Constitución de sociedades, contratos mercantiles y compliance."},
	{"Derecho Migratorio", "Permisos de residencia y trabajo, nacionalidad y recursos."},
}

func blogBrowseDeps() projections.BlogBrowseDeps {
	return projections.BlogBrowseDeps{BlogStore: stores.BlogStore, Cache: services.Cache}
}

func handleHome(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryBlogBrowse(r.Context(), listutil.Params{Page: 1}, blogBrowseDeps())
	if err != nil {
		internalError(w, r, err)
		return
	}
	latest := result.Posts
	if len(latest) > blog.RelatedLimit {
		latest = latest[:blog.RelatedLimit]
	}
	renderPage(w, r, "home.html", map[string]any{
		"Areas":  practiceAreas,
		"Latest": latest,
	})
}

func handleAbout(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "about.html", nil)
}

func handleServices(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "services.html", map[string]any{"Areas": practiceAreas})
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusForbidden, "unauthorized.html", nil)
}

// handleBlogList serves GET /blog.
func handleBlogList(w http.ResponseWriter, r *http.Request) {
	params := listutil.Parse(r.URL.Query(), projections.BlogFilterCategory)
	result, err := projections.QueryBlogBrowse(r.Context(), params, blogBrowseDeps())
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderPage(w, r, "blog_list.html", map[string]any{
		"Result":     result,
		"Categories": blog.Categories,
	})
}

// handleBlogPost serves GET /blog/{slug}.
func handleBlogPost(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryBlogPost(r.Context(), chi.URLParam(r, "slug"), stores.BlogStore)
	if err != nil {
		respondError(w, r, err)
		return
	}
	renderPage(w, r, "blog_post.html", map[string]any{
		"Post":    result.Post,
		"Related": result.Related,
	})
}

// handleBlogSearch serves GET /api/blog/search?q=.
func handleBlogSearch(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QuerySearchPosts(r.Context(), r.URL.Query().Get("q"), projections.SearchPostsDeps{
		Index:  services.Index,
		Browse: blogBrowseDeps(),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func contactPage(form inquiry.Form, sent bool) map[string]any {
	return map[string]any{
		"Form":              form,
		"Sent":              sent,
		"ConsultationTypes": inquiry.ConsultationTypes,
	}
}

// handleContactForm serves GET /contact. ?sent=1 shows the confirmation.
func handleContactForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "contact.html", contactPage(inquiry.NewForm(), r.URL.Query().Get("sent") == "1"))
}

// handleContactSubmit serves POST /contact.
func handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := inquiry.Form{
		Name:             r.FormValue("name"),
		Email:            r.FormValue("email"),
		Phone:            r.FormValue("phone"),
		Subject:          r.FormValue("subject"),
		ConsultationType: r.FormValue("consultation_type"),
		Message:          r.FormValue("message"),
		PreferredContact: r.FormValue("preferred_contact"),
	}
	_, err := orchestrators.ExecuteSubmitInquiry(r.Context(), form, orchestrators.ContactDeps{
		InquiryStore: stores.InquiryStore,
		Sender:       services.Sender,
		OfficeEmail:  officeEmail,
		Events:       services.Events,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		renderFormError(w, r, "contact.html", contactPage(form, false), err)
		return
	}
	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}
