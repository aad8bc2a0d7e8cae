// Package objectstore stores uploaded files (blog images, case documents)
// and serves them back under /uploads/<bucket>/, one handler per bucket so
// each bucket can sit behind its own access rule.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Buckets.
const (
	BucketBlogImages = "blog-images"
	BucketDocuments  = "documents"
)

// URLPrefix is the path under which objects are served.
const URLPrefix = "/uploads/"

var (
	ErrUnknownBucket = errors.New("unknown bucket")
	ErrInvalidPath   = errors.New("invalid object path")
	ErrTooLarge      = errors.New("object exceeds the size limit")
)

var buckets = map[string]bool{BucketBlogImages: true, BucketDocuments: true}

// Object describes a stored file.
type Object struct {
	Path string // bucket/name, stored on rows
	URL  string // public URL
	Size int64
}

// Store puts and removes objects.
type Store interface {
	Put(ctx context.Context, bucket, filename string, r io.Reader, limit int64) (Object, error)
	Delete(ctx context.Context, objectPath string) error
	URL(objectPath string) string
}

// Local keeps objects under a directory on disk.
type Local struct {
	root    string
	baseURL string
	newName func() string
}

// NewLocal creates the bucket directories under root.
// PRE: root is writable; baseURL is empty or an absolute URL without trailing slash
func NewLocal(root, baseURL string) (*Local, error) {
	for b := range buckets {
		if err := os.MkdirAll(filepath.Join(root, b), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", b, err)
		}
	}
	return &Local{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		newName: func() string { return uuid.New().String() },
	}, nil
}

// Put writes r under a generated name that keeps filename's extension.
// PRE: bucket is a known bucket; limit > 0
// POST: on error nothing is left on disk
func (l *Local) Put(ctx context.Context, bucket, filename string, r io.Reader, limit int64) (Object, error) {
	if !buckets[bucket] {
		return Object{}, fmt.Errorf("%w: %s", ErrUnknownBucket, bucket)
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	name := l.newName() + strings.ToLower(filepath.Ext(filename))
	objectPath := path.Join(bucket, name)
	full := filepath.Join(l.root, filepath.FromSlash(objectPath))

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("create object: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil && n > limit {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return Object{}, err
	}

	slog.Info("object_stored", "path", objectPath, "size", n)
	return Object{Path: objectPath, URL: l.URL(objectPath), Size: n}, nil
}

// Delete removes the object. A missing object is not an error.
func (l *Local) Delete(_ context.Context, objectPath string) error {
	full, err := l.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete object %s: %w", objectPath, err)
	}
	return nil
}

// URL returns the public URL of objectPath.
func (l *Local) URL(objectPath string) string {
	return l.baseURL + URLPrefix + objectPath
}

// BucketPrefix is the URL path under which bucket's objects are served.
func BucketPrefix(bucket string) string {
	return URLPrefix + bucket + "/"
}

// BucketHandler serves the objects of one bucket; mount it at
// BucketPrefix(bucket). Unknown buckets serve nothing.
func (l *Local) BucketHandler(bucket string) http.Handler {
	if !buckets[bucket] {
		return http.NotFoundHandler()
	}
	dir := http.Dir(filepath.Join(l.root, bucket))
	return http.StripPrefix(BucketPrefix(bucket), http.FileServer(noDirFS{dir}))
}

func (l *Local) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)[1:]
	bucket, name, ok := strings.Cut(clean, "/")
	if !ok || !buckets[bucket] || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	return filepath.Join(l.root, bucket, name), nil
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
