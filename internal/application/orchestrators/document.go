package orchestrators

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"lawoffice/internal/adapters/objectstore"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/document"
)

// DocumentStoreForOrchestrator defines the store interface needed by document orchestrators.
type DocumentStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (document.WithContext, error)
	Insert(ctx context.Context, d document.Document) error
	Delete(ctx context.Context, id string) error
}

// ObjectStore stores and removes uploaded files.
type ObjectStore interface {
	ObjectPutter
	Delete(ctx context.Context, objectPath string) error
}

// DocumentDeps holds dependencies for the document orchestrators.
type DocumentDeps struct {
	DocumentStore DocumentStoreForOrchestrator
	Objects       ObjectStore
	GenerateID    func() string
	Now           func() time.Time
}

// UploadDocumentInput carries a multipart upload and its metadata.
type UploadDocumentInput struct {
	Filename           string
	MimeType           string
	Body               io.Reader
	Category           string
	Description        string
	CaseID             string
	ClientID           string
	IsClientAccessible bool
}

// ExecuteUploadDocument stores the file and records the document row.
// PRE: Body is readable; Category is one of the document categories
// POST: either both the object and the row exist, or neither does
func ExecuteUploadDocument(ctx context.Context, input UploadDocumentInput, deps DocumentDeps) (document.Document, error) {
	v := apperror.Violations{}
	v.Required("file", input.Filename, "Seleccione un archivo")
	if !document.IsValidCategory(input.Category) {
		v.Add("category", "Categoría no válida")
	}
	if err := v.Err(); err != nil {
		return document.Document{}, err
	}

	obj, err := deps.Objects.Put(ctx, objectstore.BucketDocuments, input.Filename, input.Body, document.MaxFileSize)
	if err != nil {
		if errors.Is(err, objectstore.ErrTooLarge) {
			return document.Document{}, &apperror.ValidationError{Fields: apperror.Violations{"file": "El archivo supera el límite de 25 MB"}}
		}
		return document.Document{}, err
	}

	mime := input.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	doc := document.Document{
		ID:                 deps.GenerateID(),
		CaseID:             input.CaseID,
		ClientID:           input.ClientID,
		Filename:           strings.TrimSpace(input.Filename),
		FilePath:           obj.Path,
		FileSize:           obj.Size,
		MimeType:           mime,
		Category:           input.Category,
		Description:        strings.TrimSpace(input.Description),
		IsClientAccessible: input.IsClientAccessible,
		UploadedAt:         deps.Now(),
	}
	err = doc.Validate()
	if err == nil {
		err = deps.DocumentStore.Insert(ctx, doc)
	}
	if err != nil {
		removeObject(ctx, deps.Objects, obj.Path)
		return document.Document{}, err
	}
	slog.Info("document_event", "event", "document_uploaded", "id", doc.ID, "case_id", doc.CaseID, "size", doc.FileSize)
	return doc, nil
}

// ExecuteDeleteDocument removes the document row, then its stored file.
// PRE: input.Confirmed is true
// POST: the row is gone; a failure to remove the file is logged, not returned
func ExecuteDeleteDocument(ctx context.Context, input DeleteInput, deps DocumentDeps) error {
	if !input.Confirmed {
		return ErrConfirmationRequired
	}
	doc, err := deps.DocumentStore.GetByID(ctx, input.ID)
	if err != nil {
		return err
	}
	if err := deps.DocumentStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("document_event", "event", "document_deleted", "id", input.ID)
	removeObject(ctx, deps.Objects, doc.FilePath)
	return nil
}

func removeObject(ctx context.Context, objects ObjectStore, path string) {
	if err := objects.Delete(ctx, path); err != nil {
		slog.Warn("object_delete_failed", "path", path, "error", err)
	}
}
