package projections

import (
	"context"

	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/document"
	"lawoffice/internal/domain/inquiry"
	"lawoffice/internal/domain/legalcase"
)

// Counter is the count half of every store.
type Counter interface {
	Count(ctx context.Context, q dal.Query) (int, error)
}

// BlogReader interface for blog post queries.
type BlogReader interface {
	List(ctx context.Context, q dal.Query) ([]blog.Post, error)
	GetByID(ctx context.Context, id string) (blog.Post, error)
	GetBySlug(ctx context.Context, slug string) (blog.Post, error)
}

// ClientReader interface for client queries.
type ClientReader interface {
	Counter
	List(ctx context.Context, q dal.Query) ([]client.Client, error)
	GetByID(ctx context.Context, id string) (client.Client, error)
}

// CaseReader interface for case queries. Rows carry the client name.
type CaseReader interface {
	Counter
	List(ctx context.Context, q dal.Query) ([]legalcase.WithClient, error)
	GetByID(ctx context.Context, id string) (legalcase.WithClient, error)
}

// DocumentReader interface for document queries. Rows carry the case
// title and client name.
type DocumentReader interface {
	Counter
	List(ctx context.Context, q dal.Query) ([]document.WithContext, error)
}

// InquiryReader interface for contact inquiry queries.
type InquiryReader interface {
	Counter
	List(ctx context.Context, q dal.Query) ([]inquiry.Inquiry, error)
}

// AppointmentReader interface for appointment queries. Rows carry the
// client name.
type AppointmentReader interface {
	List(ctx context.Context, q dal.Query) ([]appointment.WithClient, error)
}

// PublishedCache serves the published post listing.
type PublishedCache interface {
	Published(ctx context.Context, load func(context.Context) ([]blog.Post, error)) ([]blog.Post, error)
}
