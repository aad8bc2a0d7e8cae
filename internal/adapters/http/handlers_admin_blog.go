package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lawoffice/internal/adapters/http/middleware"
	"lawoffice/internal/application/listutil"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/application/projections"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/blog"
)

func blogDeps() orchestrators.BlogDeps {
	return orchestrators.BlogDeps{
		BlogStore:  stores.BlogStore,
		Index:      services.Index,
		Cache:      services.Cache,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// handleAdminBlogList serves GET /admin/blog, drafts included.
func handleAdminBlogList(w http.ResponseWriter, r *http.Request) {
	params := listutil.Parse(r.URL.Query(), projections.BlogFilterCategory)
	result, err := projections.QueryAdminBlogList(r.Context(), params, stores.BlogStore)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderPage(w, r, "admin_blog_list.html", map[string]any{
		"Result":     result,
		"Categories": blog.Categories,
	})
}

func blogEditorPage(draft blog.Draft, creating bool, action string) map[string]any {
	return map[string]any{
		"Draft":      draft,
		"Tags":       strings.Join(draft.Tags, ", "),
		"Creating":   creating,
		"Action":     action,
		"Categories": blog.Categories,
	}
}

func handleBlogNew(w http.ResponseWriter, r *http.Request) {
	draft := blog.Draft{Category: blog.Categories[0].Value}
	renderPage(w, r, "admin_blog_form.html", blogEditorPage(draft, true, r.URL.Path))
}

func handleBlogEdit(w http.ResponseWriter, r *http.Request) {
	post, err := stores.BlogStore.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	renderPage(w, r, "admin_blog_form.html", blogEditorPage(blog.DraftFrom(post), false, r.URL.Path))
}

// readBlogDraft applies the submitted editor fields over draft. While
// creating, an empty slug follows the title; when editing, an empty slug
// keeps the current one.
func readBlogDraft(r *http.Request, draft blog.Draft, creating bool) blog.Draft {
	slug := strings.TrimSpace(r.FormValue("slug"))
	draft.SetTitle(r.FormValue("title"), creating && slug == "")
	if slug != "" {
		draft.Slug = slug
	}
	draft.Content = r.FormValue("content")
	draft.Excerpt = r.FormValue("excerpt")
	draft.Category = r.FormValue("category")
	draft.SetTags(r.FormValue("tags"))
	for _, tag := range r.Form["remove_tag"] {
		draft.RemoveTag(tag)
	}
	draft.FeaturedImage = r.FormValue("featured_image")
	if r.FormValue("remove_image") == "on" {
		draft.RemoveImage()
	}
	return draft
}

func handleBlogCreate(w http.ResponseWriter, r *http.Request) {
	saveBlogPost(w, r, "", blog.Draft{})
}

func handleBlogUpdate(w http.ResponseWriter, r *http.Request) {
	post, err := stores.BlogStore.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	saveBlogPost(w, r, post.ID, blog.DraftFrom(post))
}

// saveBlogPost handles both editor actions: "draft" saves unpublished and
// "publish" publishes. A file in the image field replaces the featured
// image before saving.
func saveBlogPost(w http.ResponseWriter, r *http.Request, id string, base blog.Draft) {
	if err := parseForm(r); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	creating := id == ""
	draft := readBlogDraft(r, base, creating)
	page := blogEditorPage(draft, creating, r.URL.Path)

	if file, header, err := r.FormFile("image"); err == nil {
		url, err := orchestrators.ExecuteUploadBlogImage(r.Context(), orchestrators.UploadImageInput{
			Filename: header.Filename,
			Body:     file,
		}, services.Objects)
		file.Close()
		if err != nil {
			renderInvalid(w, r, "admin_blog_form.html", page, &apperror.ValidationError{
				Fields: apperror.Violations{"image": "No se pudo subir la imagen"},
			})
			return
		}
		draft.FeaturedImage = url
		page = blogEditorPage(draft, creating, r.URL.Path)
	}

	_, err := orchestrators.ExecuteSavePost(r.Context(), orchestrators.SavePostInput{
		ID:       id,
		Draft:    draft,
		Publish:  r.FormValue("action") == "publish",
		AuthorID: middleware.SnapshotFromContext(r.Context()).AccountID,
	}, blogDeps())
	if err != nil {
		renderFormError(w, r, "admin_blog_form.html", page, err)
		return
	}
	http.Redirect(w, r, "/admin/blog", http.StatusSeeOther)
}

// handleBlogImageUpload serves POST /admin/blog/image and answers the
// public URL of the stored image.
func handleBlogImageUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid upload"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "image is required"})
		return
	}
	defer file.Close()

	url, err := orchestrators.ExecuteUploadBlogImage(r.Context(), orchestrators.UploadImageInput{
		Filename: header.Filename,
		Body:     file,
	}, services.Objects)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// handleBlogToggle serves POST /admin/blog/{id}/toggle.
func handleBlogToggle(w http.ResponseWriter, r *http.Request) {
	post, err := orchestrators.ExecuteTogglePublished(r.Context(), chi.URLParam(r, "id"), blogDeps())
	if err != nil {
		respondError(w, r, err)
		return
	}
	afterToggle(w, r, "/admin/blog", post)
}

// handleBlogDelete serves GET and POST /admin/blog/{id}/delete.
func handleBlogDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, "el artículo", "/admin/blog", func(in orchestrators.DeleteInput) error {
		return orchestrators.ExecuteDeletePost(r.Context(), in, blogDeps())
	})
}
