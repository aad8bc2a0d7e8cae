package blog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"lawoffice/internal/adapters/storage"
	domain "lawoffice/internal/domain/blog"
	"lawoffice/internal/domain/dal"
)

const table = "blog_posts"

const selectColumns = `SELECT id, title, slug, content, excerpt, featured_image, category, tags,
	published, published_at, author_id, created_at, updated_at FROM blog_posts`

var columns = storage.Columns{
	"id":           "id",
	"slug":         "slug",
	"category":     "category",
	"published":    "published",
	"published_at": "published_at",
	"author_id":    "author_id",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"title":        "title",
}

var updatable = storage.UpdatableSet(
	"title", "slug", "content", "excerpt", "featured_image", "category",
	"tags", "published", "published_at", "author_id",
)

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLStore creates a new blog post store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// List returns posts matching q.
// PRE: q only references whitelisted columns
// POST: returns rows in q's order; an empty result is a non-nil slice
func (s *SQLStore) List(ctx context.Context, q dal.Query) ([]domain.Post, error) {
	query, args, err := storage.SelectSQL(selectColumns, q, columns)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Classify("list", table, err)
	}
	defer rows.Close()

	results := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, storage.Classify("list", table, err)
		}
		results = append(results, p)
	}
	return results, storage.Classify("list", table, rows.Err())
}

// Count returns how many posts match q's filters.
func (s *SQLStore) Count(ctx context.Context, q dal.Query) (int, error) {
	query, args, err := storage.CountSQL(table, q, columns)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, storage.Classify("count", table, err)
}

// GetByID retrieves a post.
// PRE: id is non-empty
// POST: Returns the post or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if err != nil {
		return domain.Post{}, storage.Classify("get", table, err)
	}
	return p, nil
}

// GetBySlug retrieves a post by its unique slug.
// PRE: slug is non-empty
// POST: Returns the post or an error wrapping apperror.ErrNotFound
func (s *SQLStore) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, selectColumns+" WHERE slug = ?", slug).Scan)
	if err != nil {
		return domain.Post{}, storage.Classify("get_by_slug", table, err)
	}
	return p, nil
}

// Insert adds a new post.
// PRE: p has been built from a validated draft
// POST: the row exists; a taken slug is a conflict
func (s *SQLStore) Insert(ctx context.Context, p domain.Post) error {
	values := rowValues(p)
	values["id"] = p.ID
	values["created_at"] = storage.FormatTime(p.CreatedAt)
	values["updated_at"] = storage.FormatTime(p.UpdatedAt)
	query, args := storage.InsertSQL(table, values)
	_, err := s.db.ExecContext(ctx, query, args...)
	return storage.Classify("insert", table, err)
}

// Save overwrites every editable column of an existing post.
// PRE: p.ID names an existing post
// POST: the row matches p; updated_at is p.UpdatedAt
func (s *SQLStore) Save(ctx context.Context, p domain.Post) error {
	return s.update(ctx, p.ID, rowValues(p), p.UpdatedAt)
}

// Update applies a partial update and refreshes updated_at.
// PRE: patch only names updatable columns, with stored-form values
// POST: Returns an error wrapping apperror.ErrNotFound when id is unknown
func (s *SQLStore) Update(ctx context.Context, id string, patch dal.Patch) error {
	return s.update(ctx, id, patch, s.now())
}

func (s *SQLStore) update(ctx context.Context, id string, patch dal.Patch, at time.Time) error {
	query, args, err := storage.UpdateSQL(table, patch, updatable, id, at)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Classify("update", table, err)
	}
	return storage.RequireAffected("update", table, res)
}

// Delete removes a post.
// PRE: id is non-empty
// POST: Returns an error wrapping apperror.ErrNotFound when id is unknown
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM blog_posts WHERE id = ?", id)
	if err != nil {
		return storage.Classify("delete", table, err)
	}
	return storage.RequireAffected("delete", table, res)
}

// rowValues maps the editable columns of p to their stored form.
func rowValues(p domain.Post) dal.Patch {
	return dal.Patch{
		"title":          p.Title,
		"slug":           p.Slug,
		"content":        p.Content,
		"excerpt":        p.Excerpt,
		"featured_image": storage.NullString(p.FeaturedImage),
		"category":       p.Category,
		"tags":           encodeTags(p.Tags),
		"published":      p.Published,
		"published_at":   storage.NullTime(p.PublishedAt),
		"author_id":      storage.NullString(p.AuthorID),
	}
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// scanPost extracts a Post from a row scanner function.
func scanPost(scan func(dest ...interface{}) error) (domain.Post, error) {
	var p domain.Post
	var featured, publishedAt, authorID sql.NullString
	var tags, createdAt, updatedAt string
	err := scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.Excerpt,
		&featured,
		&p.Category,
		&tags,
		&p.Published,
		&publishedAt,
		&authorID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	p.FeaturedImage = featured.String
	p.AuthorID = authorID.String
	p.PublishedAt = storage.ParseNullTime(publishedAt)
	p.CreatedAt, _ = storage.ParseTime(createdAt)
	p.UpdatedAt, _ = storage.ParseTime(updatedAt)
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil || len(p.Tags) == 0 {
		p.Tags = []string{}
	}
	return p, nil
}
