package projections

import (
	"context"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/legalcase"
)

// AdminPageSize is the page size of the back-office lists.
const AdminPageSize = 10

// ClientFilterActive is the query parameter carrying the active filter.
const ClientFilterActive = "active"

// ClientListResult is one page of the client list.
type ClientListResult struct {
	Params   listutil.Params
	Clients  []client.Client
	PageInfo listutil.PageInfo
}

// QueryClientList lists clients newest first, filtered by search over
// name, email and company and by the active filter. Without a search
// term the store pages the rows itself; free-text search spans columns
// the store cannot match, so it reads the filtered set and pages here.
func QueryClientList(ctx context.Context, params listutil.Params, store ClientReader) (ClientListResult, error) {
	q := dal.Query{}.Newest("created_at")
	switch params.Filter(ClientFilterActive) {
	case "active":
		q = q.Where(dal.Eq("active", true))
	case "inactive":
		q = q.Where(dal.Eq("active", false))
	}
	if params.Search == "" {
		page, info, err := listPage[client.Client](ctx, store, q, params.Page, AdminPageSize)
		if err != nil {
			return ClientListResult{}, err
		}
		return ClientListResult{Params: params, Clients: page, PageInfo: info}, nil
	}
	clients, err := store.List(ctx, q)
	if err != nil {
		return ClientListResult{}, err
	}
	matched := client.Filter(clients, params.Search, "")
	page, info := listutil.Paginate(matched, params.Page, AdminPageSize)
	return ClientListResult{Params: params, Clients: page, PageInfo: info}, nil
}

// ClientDetailDeps holds dependencies for the client detail view.
type ClientDetailDeps struct {
	ClientStore ClientReader
	CaseStore   CaseReader
}

// ClientDetailResult is a client with its cases.
type ClientDetailResult struct {
	Client client.Client
	Cases  []legalcase.WithClient
}

// QueryClientDetail loads a client and its cases, newest first.
// POST: an unknown id is ErrNotFound
func QueryClientDetail(ctx context.Context, id string, deps ClientDetailDeps) (ClientDetailResult, error) {
	c, err := deps.ClientStore.GetByID(ctx, id)
	if err != nil {
		return ClientDetailResult{}, err
	}
	cases, err := deps.CaseStore.List(ctx, dal.Query{}.Where(dal.Eq("client_id", id)).Newest("created_at"))
	if err != nil {
		return ClientDetailResult{}, err
	}
	return ClientDetailResult{Client: c, Cases: cases}, nil
}
