package projections

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"lawoffice/internal/adapters/search"
	"lawoffice/internal/domain/blog"
)

// SearchLimit caps the blog search API result.
const SearchLimit = 10

// SearchPostsDeps holds dependencies for the blog search API.
type SearchPostsDeps struct {
	Index  search.Index
	Browse BlogBrowseDeps
}

// SearchPostsResult is the blog search API payload.
type SearchPostsResult struct {
	Query  string       `json:"query"`
	Source string       `json:"source"`
	Hits   []search.Hit `json:"hits"`
}

// QuerySearchPosts searches published posts through the index, falling
// back to a scan of the published listing when the index is unavailable
// or fails.
// POST: Source is "index" or "scan"; Hits is never nil
func QuerySearchPosts(ctx context.Context, query string, deps SearchPostsDeps) (SearchPostsResult, error) {
	query = strings.TrimSpace(query)
	result := SearchPostsResult{Query: query, Hits: []search.Hit{}}
	if query == "" {
		result.Source = "scan"
		return result, nil
	}

	if deps.Index != nil {
		hits, err := deps.Index.Search(ctx, query, SearchLimit)
		if err == nil {
			result.Source = "index"
			if hits != nil {
				result.Hits = hits
			}
			return result, nil
		}
		if !errors.Is(err, search.ErrUnavailable) {
			slog.Warn("search_index_failed", "query", query, "error", err)
		}
	}

	posts, err := publishedPosts(ctx, deps.Browse)
	if err != nil {
		return SearchPostsResult{}, err
	}
	result.Source = "scan"
	for _, p := range posts {
		if len(result.Hits) == SearchLimit {
			break
		}
		if blog.Matches(p, query, blog.CategoryAll) {
			result.Hits = append(result.Hits, search.HitFromPost(p))
		}
	}
	return result, nil
}
