package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lawoffice/internal/adapters/objectstore"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/blog"
)

func newBlogDeps() (BlogDeps, *mockBlogStore, *mockIndex, *mockCache) {
	store := newMockBlogStore()
	index := &mockIndex{}
	cache := &mockCache{}
	return BlogDeps{BlogStore: store, Index: index, Cache: cache, GenerateID: fixedID, Now: fixedNow}, store, index, cache
}

func TestExecuteSavePost_CreateDerivesSlugAndPublishes(t *testing.T) {
	deps, store, index, cache := newBlogDeps()
	draft := blog.Draft{Content: "Texto"}
	draft.SetTitle("¿Qué es un Divorcio Express?", true)

	post, err := ExecuteSavePost(context.Background(), SavePostInput{Draft: draft, Publish: true, AuthorID: "admin-1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.ID != "test-id-001" || post.Slug != "qu-es-un-divorcio-express" {
		t.Errorf("post = %+v", post)
	}
	if !post.Published || !post.PublishedAt.Equal(fixedTime) || post.AuthorID != "admin-1" {
		t.Errorf("publish fields = %v %v %q", post.Published, post.PublishedAt, post.AuthorID)
	}
	if _, ok := store.posts[post.ID]; !ok {
		t.Error("post not stored")
	}
	if len(index.indexed) != 1 || cache.invalidations != 1 {
		t.Errorf("side effects: indexed=%v invalidations=%d", index.indexed, cache.invalidations)
	}
}

func TestExecuteSavePost_ValidationBlocksStore(t *testing.T) {
	deps, store, _, cache := newBlogDeps()
	_, err := ExecuteSavePost(context.Background(), SavePostInput{Draft: blog.Draft{Title: "  "}}, deps)
	fields := apperror.FieldErrors(err)
	if fields["title"] == "" || fields["content"] == "" {
		t.Errorf("fields = %v", fields)
	}
	if store.calls != 0 || cache.invalidations != 0 {
		t.Errorf("store calls = %d, invalidations = %d", store.calls, cache.invalidations)
	}
}

func TestExecuteSavePost_SlugConflictIsFieldError(t *testing.T) {
	deps, store, _, _ := newBlogDeps()
	store.posts["other"] = blog.Post{ID: "other", Slug: "herencias"}

	_, err := ExecuteSavePost(context.Background(), SavePostInput{Draft: blog.Draft{Title: "Herencias", Content: "x"}}, deps)
	if apperror.FieldErrors(err)["slug"] != ErrSlugTakenMessage {
		t.Errorf("err = %v", err)
	}
}

// TestExecuteSavePost_EditKeepsSlugAndFirstPublishDate checks that editing
// does not re-derive the slug and keeps published_at.
func TestExecuteSavePost_EditKeepsSlugAndFirstPublishDate(t *testing.T) {
	deps, store, _, _ := newBlogDeps()
	first := fixedTime.Add(-48 * time.Hour)
	store.posts["p1"] = blog.Post{ID: "p1", Title: "Viejo", Slug: "viejo", Content: "x", Published: true, PublishedAt: first, CreatedAt: first}

	draft := blog.DraftFrom(store.posts["p1"])
	draft.SetTitle("Título nuevo", false)
	post, err := ExecuteSavePost(context.Background(), SavePostInput{ID: "p1", Draft: draft, Publish: true, AuthorID: "admin-2"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Slug != "viejo" || !post.PublishedAt.Equal(first) || !post.CreatedAt.Equal(first) {
		t.Errorf("post = %+v", post)
	}
	if post.AuthorID != "admin-2" {
		t.Errorf("author = %q", post.AuthorID)
	}
}

func TestExecuteSavePost_UnknownID(t *testing.T) {
	deps, _, _, _ := newBlogDeps()
	_, err := ExecuteSavePost(context.Background(), SavePostInput{ID: "missing", Draft: blog.Draft{Title: "a", Content: "b"}}, deps)
	if !apperror.IsNotFound(err) {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteTogglePublished(t *testing.T) {
	deps, store, index, _ := newBlogDeps()
	store.posts["p1"] = blog.Post{ID: "p1", Slug: "a"}
	ctx := context.Background()

	post, err := ExecuteTogglePublished(ctx, "p1", deps)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !post.Published || !post.PublishedAt.Equal(fixedTime) {
		t.Errorf("after publish = %+v", post)
	}
	if _, ok := store.patches[0]["published_at"]; !ok {
		t.Error("first publish did not set published_at")
	}

	post, err = ExecuteTogglePublished(ctx, "p1", deps)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if post.Published {
		t.Error("still published")
	}
	if _, ok := store.patches[1]["published_at"]; ok {
		t.Error("unpublish touched published_at")
	}
	if len(index.indexed) != 2 {
		t.Errorf("index calls = %v", index.indexed)
	}
}

func TestExecuteDeletePost_RequiresConfirmation(t *testing.T) {
	deps, store, index, _ := newBlogDeps()
	store.posts["p1"] = blog.Post{ID: "p1"}

	if err := ExecuteDeletePost(context.Background(), DeleteInput{ID: "p1"}, deps); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("err = %v", err)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times without confirmation", store.calls)
	}

	if err := ExecuteDeletePost(context.Background(), DeleteInput{ID: "p1", Confirmed: true}, deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.posts["p1"]; ok || len(index.deleted) != 1 {
		t.Error("post not deleted everywhere")
	}
}

func TestExecuteSavePost_IndexFailureIsNotFatal(t *testing.T) {
	deps, _, index, _ := newBlogDeps()
	index.err = errors.New("es down")
	if _, err := ExecuteSavePost(context.Background(), SavePostInput{Draft: blog.Draft{Title: "a", Content: "b"}, Publish: true}, deps); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteUploadBlogImage(t *testing.T) {
	objects := newMockObjects()
	url, err := ExecuteUploadBlogImage(context.Background(), UploadImageInput{Filename: "portada.png", Body: strings.NewReader("png")}, objects)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/uploads/"+objectstore.BucketBlogImages+"/obj-portada.png" {
		t.Errorf("url = %q", url)
	}
}
