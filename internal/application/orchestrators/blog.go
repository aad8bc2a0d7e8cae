package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"lawoffice/internal/adapters/objectstore"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/dal"
)

// BlogStoreForOrchestrator defines the store interface needed by blog orchestrators.
type BlogStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (blog.Post, error)
	Insert(ctx context.Context, p blog.Post) error
	Save(ctx context.Context, p blog.Post) error
	Update(ctx context.Context, id string, patch dal.Patch) error
	Delete(ctx context.Context, id string) error
}

// PostIndexer mirrors published posts into the search index.
type PostIndexer interface {
	IndexPost(ctx context.Context, p blog.Post) error
	DeletePost(ctx context.Context, id string) error
}

// ListingCache is invalidated after every blog write.
type ListingCache interface {
	Invalidate()
}

// ObjectPutter stores uploaded files.
type ObjectPutter interface {
	Put(ctx context.Context, bucket, filename string, r io.Reader, limit int64) (objectstore.Object, error)
}

// BlogDeps holds dependencies for the blog orchestrators. Index and Cache
// are optional.
type BlogDeps struct {
	BlogStore  BlogStoreForOrchestrator
	Index      PostIndexer
	Cache      ListingCache
	GenerateID func() string
	Now        func() time.Time
}

// SavePostInput carries the editor state. An empty ID creates a post.
type SavePostInput struct {
	ID       string
	Draft    blog.Draft
	Publish  bool
	AuthorID string
}

// ErrSlugTakenMessage is shown on the slug field when another post uses it.
const ErrSlugTakenMessage = "Ya existe un artículo con este slug"

// ExecuteSavePost creates or updates a post from the editor.
// PRE: AuthorID is the signed-in admin
// POST: the post is persisted with author_id = AuthorID; a slug conflict is
// returned as a field error on slug and nothing changes
func ExecuteSavePost(ctx context.Context, input SavePostInput, deps BlogDeps) (blog.Post, error) {
	creating := input.ID == ""
	base := blog.Post{}
	if !creating {
		existing, err := deps.BlogStore.GetByID(ctx, input.ID)
		if err != nil {
			return blog.Post{}, err
		}
		base = existing
	} else {
		base.ID = deps.GenerateID()
	}

	post, err := input.Draft.Build(base, input.Publish, input.AuthorID, deps.Now())
	if err != nil {
		return blog.Post{}, err
	}

	if creating {
		err = deps.BlogStore.Insert(ctx, post)
	} else {
		err = deps.BlogStore.Save(ctx, post)
	}
	if err != nil {
		if apperror.IsConflict(err) {
			return blog.Post{}, &apperror.ValidationError{Fields: apperror.Violations{"slug": ErrSlugTakenMessage}}
		}
		return blog.Post{}, err
	}

	slog.Info("blog_event", "event", "post_saved", "id", post.ID, "slug", post.Slug, "published", post.Published, "created", creating)
	afterBlogWrite(ctx, deps, post)
	return post, nil
}

// ExecuteTogglePublished flips the published flag from the list view.
// POST: published_at is set the first time a post is published
func ExecuteTogglePublished(ctx context.Context, id string, deps BlogDeps) (blog.Post, error) {
	post, err := deps.BlogStore.GetByID(ctx, id)
	if err != nil {
		return blog.Post{}, err
	}
	now := deps.Now()
	post.Published = !post.Published
	patch := dal.Patch{"published": post.Published}
	if post.Published && post.PublishedAt.IsZero() {
		post.PublishedAt = now
		patch["published_at"] = now
	}
	if err := deps.BlogStore.Update(ctx, id, patch); err != nil {
		return blog.Post{}, err
	}
	post.UpdatedAt = now

	slog.Info("blog_event", "event", "post_toggled", "id", id, "published", post.Published)
	afterBlogWrite(ctx, deps, post)
	return post, nil
}

// ExecuteDeletePost removes a post.
// PRE: input.Confirmed is true
// POST: without confirmation returns ErrConfirmationRequired and issues no store call
func ExecuteDeletePost(ctx context.Context, input DeleteInput, deps BlogDeps) error {
	if !input.Confirmed {
		return ErrConfirmationRequired
	}
	if err := deps.BlogStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("blog_event", "event", "post_deleted", "id", input.ID)
	if deps.Cache != nil {
		deps.Cache.Invalidate()
	}
	if deps.Index != nil {
		if err := deps.Index.DeletePost(ctx, input.ID); err != nil {
			slog.Warn("search_index_failed", "op", "delete", "id", input.ID, "error", err)
		}
	}
	return nil
}

// MaxImageSize caps featured image uploads.
const MaxImageSize = 5 << 20

// UploadImageInput carries an uploaded featured image.
type UploadImageInput struct {
	Filename string
	Body     io.Reader
}

// ExecuteUploadBlogImage stores a featured image and returns its public URL.
// POST: the caller places the URL on the draft; no post row changes here
func ExecuteUploadBlogImage(ctx context.Context, input UploadImageInput, objects ObjectPutter) (string, error) {
	obj, err := objects.Put(ctx, objectstore.BucketBlogImages, input.Filename, input.Body, MaxImageSize)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return obj.URL, nil
}

func afterBlogWrite(ctx context.Context, deps BlogDeps, post blog.Post) {
	if deps.Cache != nil {
		deps.Cache.Invalidate()
	}
	if deps.Index != nil {
		if err := deps.Index.IndexPost(ctx, post); err != nil {
			slog.Warn("search_index_failed", "op", "index", "id", post.ID, "error", err)
		}
	}
}
