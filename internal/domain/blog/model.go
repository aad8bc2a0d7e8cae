package blog

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"lawoffice/internal/domain/apperror"
)

// Public listing and admin listing page sizes.
const (
	PublicPageSize = 6
	AdminPageSize  = 10
	RelatedLimit   = 3
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// Categories offered by the editor and the public filter.
var Categories = []Category{
	{"derecho-civil", "Derecho Civil"},
	{"derecho-penal", "Derecho Penal"},
	{"derecho-familiar", "Derecho Familiar"},
	{"derecho-laboral", "Derecho Laboral"},
	{"noticias-legales", "Noticias Legales"},
	{"consejos-legales", "Consejos Legales"},
}

// Category is a slug/label pair.
type Category struct {
	Value string
	Label string
}

// ErrSlugTaken is returned when another post already uses the slug.
var ErrSlugTaken = errors.New("slug already in use")

// Post is the persisted blog post row.
type Post struct {
	ID            string
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	Category      string
	Tags          []string
	Published     bool
	PublishedAt   time.Time
	AuthorID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// DeriveSlug turns a title into a URL-safe slug: lowercase, characters
// outside [a-z0-9\s-] removed, whitespace runs and repeated hyphens
// collapsed to one hyphen, no leading or trailing hyphen.
// INVARIANT: DeriveSlug(DeriveSlug(t)) == DeriveSlug(t)
func DeriveSlug(title string) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Draft is the editor's in-memory form state. It never reaches a store
// directly; Build turns it into a Post after validation.
type Draft struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	Category      string
	Tags          []string
}

// DraftFrom copies an existing post into an editable draft.
func DraftFrom(p Post) Draft {
	return Draft{
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		Category:      p.Category,
		Tags:          append([]string(nil), p.Tags...),
	}
}

// SetTitle updates the title. While creating, the slug follows the title;
// once a post exists the slug is edited on its own.
func (d *Draft) SetTitle(title string, creating bool) {
	d.Title = title
	if creating {
		d.Slug = DeriveSlug(title)
	}
}

// AddTag inserts a trimmed tag. Empty or already present tags are ignored.
// POST: returns true when the set changed
func (d *Draft) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range d.Tags {
		if t == tag {
			return false
		}
	}
	d.Tags = append(d.Tags, tag)
	return true
}

// RemoveTag drops tag from the set. The result is a new slice, so a
// draft copied from a post never rewrites the post's tags.
func (d *Draft) RemoveTag(tag string) {
	tag = strings.TrimSpace(tag)
	kept := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	d.Tags = kept
}

// SetTags replaces the set from a comma separated field, applying the
// AddTag rules to each element.
func (d *Draft) SetTags(raw string) {
	d.Tags = nil
	for _, t := range strings.Split(raw, ",") {
		d.AddTag(t)
	}
}

// RemoveImage clears the featured image URL. The stored object is left
// untouched.
func (d *Draft) RemoveImage() {
	d.FeaturedImage = ""
}

// Validate reports field-scoped violations.
// POST: returns *apperror.ValidationError or nil
func (d *Draft) Validate() error {
	v := apperror.Violations{}
	v.Required("title", d.Title, "El título es requerido")
	v.Required("content", d.Content, "El contenido es requerido")
	if strings.TrimSpace(d.Title) != "" && d.normalizedSlug() == "" {
		v.Add("slug", "El slug no es válido")
	}
	return v.Err()
}

func (d *Draft) normalizedSlug() string {
	if strings.TrimSpace(d.Slug) != "" {
		return DeriveSlug(d.Slug)
	}
	return DeriveSlug(d.Title)
}

// Build validates the draft and produces the row to persist. base is the
// existing post when editing, or the zero Post when creating. publish
// selects between the "save draft" and "publish" actions.
// PRE: authorID is the signed-in account
// POST: PublishedAt is set on the first publish and kept afterwards
func (d Draft) Build(base Post, publish bool, authorID string, now time.Time) (Post, error) {
	if err := d.Validate(); err != nil {
		return Post{}, err
	}
	p := base
	p.Title = strings.TrimSpace(d.Title)
	p.Slug = d.normalizedSlug()
	p.Content = strings.TrimSpace(d.Content)
	p.Excerpt = strings.TrimSpace(d.Excerpt)
	p.FeaturedImage = d.FeaturedImage
	p.Category = d.Category
	p.Tags = append([]string(nil), d.Tags...)
	p.Published = publish
	if publish && p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	p.AuthorID = authorID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return p, nil
}

// Matches applies the list predicate: category equality (unless empty or
// "all") and a case-insensitive substring search over title, excerpt and
// tags.
func Matches(p Post, search, category string) bool {
	if category != "" && category != CategoryAll && p.Category != category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Excerpt), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Filter returns the posts matching search and category, keeping order.
func Filter(posts []Post, search, category string) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if Matches(p, search, category) {
			out = append(out, p)
		}
	}
	return out
}

// CategoryLabel returns the display label for a category value.
func CategoryLabel(value string) string {
	for _, c := range Categories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
