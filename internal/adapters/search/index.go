// Package search keeps a full-text index of published blog posts.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lawoffice/internal/domain/blog"
)

// DefaultIndex is the index name used when none is configured.
const DefaultIndex = "lawoffice-blog"

// ErrUnavailable is returned by indexes that cannot answer queries.
// Callers fall back to a store scan.
var ErrUnavailable = errors.New("search index unavailable")

// Hit is one search result.
type Hit struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}

// Index stores and queries published posts.
type Index interface {
	IndexPost(ctx context.Context, p blog.Post) error
	DeletePost(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// HitFromPost projects a post to its indexed document.
func HitFromPost(p blog.Post) Hit {
	return Hit{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Category:    p.Category,
		Tags:        p.Tags,
		PublishedAt: p.PublishedAt,
	}
}

// ElasticIndex is an Index backed by Elasticsearch.
type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticIndex creates a client for url. No request is made until first use.
// PRE: url is an http(s) address of an Elasticsearch node
func NewElasticIndex(url, index string) (*ElasticIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticIndex{client: client, index: index}, nil
}

// Ping checks the node is reachable.
func (e *ElasticIndex) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping elasticsearch: %s", res.Status())
	}
	return nil
}

// IndexPost upserts a published post and removes an unpublished one.
// POST: the index reflects p's visibility after refresh
func (e *ElasticIndex) IndexPost(ctx context.Context, p blog.Post) error {
	if !p.Published {
		return e.DeletePost(ctx, p.ID)
	}
	body, err := json.Marshal(HitFromPost(p))
	if err != nil {
		return fmt.Errorf("encode post %s: %w", p.ID, err)
	}
	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index post %s: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index post %s: %s", p.ID, res.String())
	}
	return nil
}

// DeletePost removes id from the index. A missing document is not an error.
func (e *ElasticIndex) DeletePost(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete post %s: %s", id, res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source Hit `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a multi-field match over title, excerpt and tags.
// PRE: limit > 0
// POST: returns at most limit hits, best match first
func (e *ElasticIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	q := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^3", "excerpt", "tags^2"},
				"fuzziness": "AUTO",
			},
		},
	}
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search posts: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, h.Source)
	}
	return hits, nil
}

// NoopIndex ignores writes and reports ErrUnavailable for queries.
type NoopIndex struct{}

func (NoopIndex) IndexPost(context.Context, blog.Post) error { return nil }
func (NoopIndex) DeletePost(context.Context, string) error   { return nil }
func (NoopIndex) Search(context.Context, string, int) ([]Hit, error) {
	return nil, ErrUnavailable
}
