package web

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/application/projections"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/document"
)

func documentDeps() orchestrators.DocumentDeps {
	return orchestrators.DocumentDeps{
		DocumentStore: stores.DocumentStore,
		Objects:       services.Objects,
		GenerateID:    generateID,
		Now:           timeNow,
	}
}

var fileTypes = []struct{ Value, Label string }{
	{document.TypeAll, "Todos"},
	{document.TypePDF, "PDF"},
	{document.TypeImage, "Imágenes"},
	{document.TypeDocument, "Documentos"},
}

// documentPage loads the list and the upload form's case and client
// choices.
func documentPage(ctx context.Context, params listutil.Params) (map[string]any, error) {
	result, err := projections.QueryDocumentList(ctx, params, stores.DocumentStore)
	if err != nil {
		return nil, err
	}
	cases, err := stores.CaseStore.List(ctx, dal.Query{}.Newest("created_at"))
	if err != nil {
		return nil, err
	}
	clients, err := stores.ClientStore.List(ctx, dal.Query{OrderBy: "first_name"})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Result":     result,
		"Categories": document.ValidCategories,
		"FileTypes":  fileTypes,
		"Cases":      cases,
		"Clients":    clients,
		"Urls":       services.Objects,
		"Upload":     orchestrators.UploadDocumentInput{Category: document.CategoryOther},
	}, nil
}

// handleDocumentList serves GET /admin/documents.
func handleDocumentList(w http.ResponseWriter, r *http.Request) {
	params := listutil.Parse(r.URL.Query(), projections.DocumentFilterCategory, projections.DocumentFilterType)
	if !isHTMLRequest(r) {
		result, err := projections.QueryDocumentList(r.Context(), params, stores.DocumentStore)
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}
	page, err := documentPage(r.Context(), params)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderPage(w, r, "admin_documents.html", page)
}

// handleDocumentUpload serves POST /admin/documents/upload (multipart).
func handleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, document.MaxFileSize+maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	input := orchestrators.UploadDocumentInput{
		Category:           r.FormValue("category"),
		Description:        r.FormValue("description"),
		CaseID:             r.FormValue("case_id"),
		ClientID:           r.FormValue("client_id"),
		IsClientAccessible: r.FormValue("is_client_accessible") == "on",
	}
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		input.Filename = header.Filename
		input.Body = file
		input.MimeType = header.Header.Get("Content-Type")
		if input.MimeType == "" || input.MimeType == "application/octet-stream" {
			if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
				input.MimeType = byExt
			}
		}
	}

	doc, err := orchestrators.ExecuteUploadDocument(r.Context(), input, documentDeps())
	if err != nil {
		page, pageErr := documentPage(r.Context(), listutil.Params{Page: 1, Filters: map[string]string{}})
		if pageErr != nil {
			internalError(w, r, pageErr)
			return
		}
		page["Upload"] = input
		renderFormError(w, r, "admin_documents.html", page, err)
		return
	}
	if doc.CaseID != "" && r.FormValue("return") == "case" {
		http.Redirect(w, r, "/admin/cases/"+doc.CaseID+"?tab="+projections.TabDocuments, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/documents", http.StatusSeeOther)
}

// handleDocumentDelete serves GET and POST /admin/documents/{id}/delete.
func handleDocumentDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(w, r, "el documento", "/admin/documents", func(in orchestrators.DeleteInput) error {
		return orchestrators.ExecuteDeleteDocument(r.Context(), in, documentDeps())
	})
}
