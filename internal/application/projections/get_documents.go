package projections

import (
	"context"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/document"
)

// Document list filter parameters.
const (
	DocumentFilterCategory = "category"
	DocumentFilterType     = "type"
)

// DocumentListResult is one page of the document list.
type DocumentListResult struct {
	Params         listutil.Params
	Documents      []document.WithContext
	CategoryCounts map[string]int
	PageInfo       listutil.PageInfo
}

// QueryDocumentList lists documents newest first, filtered by search over
// filename, case title and client name, by category and by file type.
// The category goes to the store. File type derives from the MIME type,
// so it and search are matched here; otherwise the store pages too.
// CategoryCounts covers every document regardless of the filters.
func QueryDocumentList(ctx context.Context, params listutil.Params, store DocumentReader) (DocumentListResult, error) {
	q := dal.Query{}.Newest("uploaded_at")
	if category := params.Filter(DocumentFilterCategory); exact(category) {
		q = q.Where(dal.Eq("category", category))
	}
	fileType := params.Filter(DocumentFilterType)

	var (
		page []document.WithContext
		info listutil.PageInfo
		err  error
	)
	if params.Search == "" && !exact(fileType) {
		page, info, err = listPage[document.WithContext](ctx, store, q, params.Page, AdminPageSize)
	} else {
		var docs []document.WithContext
		docs, err = store.List(ctx, q)
		page, info = listutil.Paginate(document.Filter(docs, params.Search, "", fileType), params.Page, AdminPageSize)
	}
	if err != nil {
		return DocumentListResult{}, err
	}
	counts, err := countBy(ctx, store, dal.Query{}, "category", document.ValidCategories)
	if err != nil {
		return DocumentListResult{}, err
	}
	return DocumentListResult{Params: params, Documents: page, CategoryCounts: counts, PageInfo: info}, nil
}
