package projections

import (
	"context"
	"fmt"
	"log/slog"

	"lawoffice/internal/application/listutil"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/dal"
)

// BlogFilterCategory is the query parameter carrying the category filter.
const BlogFilterCategory = "category"

// BlogBrowseDeps holds dependencies for the public blog list.
type BlogBrowseDeps struct {
	BlogStore BlogReader
	Cache     PublishedCache
}

// BlogBrowseResult is one page of the public blog list.
type BlogBrowseResult struct {
	Params   listutil.Params
	Posts    []blog.Post
	PageInfo listutil.PageInfo
}

// Category returns the active category filter, "all" when none.
func (r BlogBrowseResult) Category() string {
	if c := r.Params.Filter(BlogFilterCategory); c != "" {
		return c
	}
	return blog.CategoryAll
}

// WithCategory is the link for switching category. It resets the page.
func (r BlogBrowseResult) WithCategory(category string) string {
	if category == blog.CategoryAll {
		category = ""
	}
	return r.Params.WithFilter(BlogFilterCategory, category).Href("/blog")
}

// WithSearch is the link for a new search. It resets the page.
func (r BlogBrowseResult) WithSearch(search string) string {
	return r.Params.WithSearch(search).Href("/blog")
}

// PageHref is the link to page n under the current filters.
func (r BlogBrowseResult) PageHref(n int) string {
	return r.Params.WithPage(n).Href("/blog")
}

// LoadPublished lists published posts newest first, bypassing any cache.
func LoadPublished(store BlogReader) func(context.Context) ([]blog.Post, error) {
	return func(ctx context.Context) ([]blog.Post, error) {
		q := dal.Query{}.Where(dal.Eq("published", true)).Newest("published_at")
		return store.List(ctx, q)
	}
}

// publishedPosts reads through the cache when one is configured.
func publishedPosts(ctx context.Context, deps BlogBrowseDeps) ([]blog.Post, error) {
	load := LoadPublished(deps.BlogStore)
	if deps.Cache == nil {
		return load(ctx)
	}
	return deps.Cache.Published(ctx, load)
}

// QueryBlogBrowse returns one page of the public blog list.
// POST: only published posts, newest first, filtered by search over
// title, excerpt and tags plus category equality
func QueryBlogBrowse(ctx context.Context, params listutil.Params, deps BlogBrowseDeps) (BlogBrowseResult, error) {
	posts, err := publishedPosts(ctx, deps)
	if err != nil {
		return BlogBrowseResult{}, err
	}
	matched := blog.Filter(posts, params.Search, params.Filter(BlogFilterCategory))
	page, info := listutil.Paginate(matched, params.Page, blog.PublicPageSize)
	return BlogBrowseResult{Params: params, Posts: page, PageInfo: info}, nil
}

// BlogPostResult is a public post with its related posts.
type BlogPostResult struct {
	Post    blog.Post
	Related []blog.Post
}

// QueryBlogPost loads a published post by slug.
// POST: an unpublished or unknown slug is ErrNotFound; Related holds up to
// blog.RelatedLimit published posts of the same category, newest first,
// excluding the post itself. A related-posts failure leaves Related empty.
func QueryBlogPost(ctx context.Context, slug string, store BlogReader) (BlogPostResult, error) {
	post, err := store.GetBySlug(ctx, slug)
	if err != nil {
		return BlogPostResult{}, err
	}
	if !post.Published {
		return BlogPostResult{}, fmt.Errorf("blog_posts %s: %w", slug, apperror.ErrNotFound)
	}

	q := dal.Query{Limit: blog.RelatedLimit}.
		Where(dal.Eq("published", true), dal.Eq("category", post.Category), dal.Neq("id", post.ID)).
		Newest("published_at")
	related, err := store.List(ctx, q)
	if err != nil {
		slog.Warn("related_posts_failed", "slug", slug, "error", err)
		related = nil
	}
	return BlogPostResult{Post: post, Related: related}, nil
}

// AdminBlogListResult is one page of the admin blog list.
type AdminBlogListResult struct {
	Params   listutil.Params
	Posts    []blog.Post
	PageInfo listutil.PageInfo
}

// QueryAdminBlogList lists every post, drafts included, newest first.
func QueryAdminBlogList(ctx context.Context, params listutil.Params, store BlogReader) (AdminBlogListResult, error) {
	posts, err := store.List(ctx, dal.Query{}.Newest("created_at"))
	if err != nil {
		return AdminBlogListResult{}, err
	}
	matched := blog.Filter(posts, params.Search, params.Filter(BlogFilterCategory))
	page, info := listutil.Paginate(matched, params.Page, blog.AdminPageSize)
	return AdminBlogListResult{Params: params, Posts: page, PageInfo: info}, nil
}
