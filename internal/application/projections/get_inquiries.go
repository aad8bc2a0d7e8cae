package projections

import (
	"context"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/inquiry"
)

// InquiryFilterStatus is the query parameter carrying the status filter.
const InquiryFilterStatus = "status"

// InquiryListResult is one page of the inquiry inbox.
type InquiryListResult struct {
	Params    listutil.Params
	Inquiries []inquiry.Inquiry
	PageInfo  listutil.PageInfo
}

// QueryInquiryList lists contact inquiries newest first. A known status
// filter is pushed down to the store, which also pages; anything else
// shows all.
func QueryInquiryList(ctx context.Context, params listutil.Params, store InquiryReader) (InquiryListResult, error) {
	q := dal.Query{}.Newest("created_at")
	if status := params.Filter(InquiryFilterStatus); inquiry.IsValidStatus(status) {
		q = q.Where(dal.Eq("status", status))
	}
	page, info, err := listPage[inquiry.Inquiry](ctx, store, q, params.Page, AdminPageSize)
	if err != nil {
		return InquiryListResult{}, err
	}
	return InquiryListResult{Params: params, Inquiries: page, PageInfo: info}, nil
}
