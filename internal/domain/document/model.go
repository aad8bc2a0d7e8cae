package document

import (
	"errors"
	"strings"
	"time"
)

// Category constants
const (
	CategoryContract       = "contract"
	CategoryEvidence       = "evidence"
	CategoryCorrespondence = "correspondence"
	CategoryOther          = "other"
)

// ValidCategories contains all valid category values.
var ValidCategories = []string{CategoryContract, CategoryEvidence, CategoryCorrespondence, CategoryOther}

// File type filters derived from the MIME type.
const (
	TypeAll      = "all"
	TypePDF      = "pdf"
	TypeImage    = "image"
	TypeDocument = "document"
)

// MaxFileSize caps uploads at 25 MiB.
const MaxFileSize = 25 << 20

// Domain errors
var (
	ErrEmptyFilename   = errors.New("filename cannot be empty")
	ErrEmptyPath       = errors.New("file path cannot be empty")
	ErrInvalidCategory = errors.New("category must be one of: contract, evidence, correspondence, other")
	ErrTooLarge        = errors.New("file exceeds the 25 MiB limit")
)

// Document is the persisted document row. FilePath references the object
// in the storage collaborator.
type Document struct {
	ID                 string
	CaseID             string
	ClientID           string
	Filename           string
	FilePath           string
	FileSize           int64
	MimeType           string
	Category           string
	Description        string
	IsClientAccessible bool
	UploadedAt         time.Time
}

// WithContext is a document joined with its case title and client name.
type WithContext struct {
	Document
	CaseTitle  string
	ClientName string
}

// Validate checks if the Document has valid data.
// PRE: Document struct is populated
// POST: Returns nil if valid, error otherwise
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Filename) == "" {
		return ErrEmptyFilename
	}
	if d.FilePath == "" {
		return ErrEmptyPath
	}
	if !IsValidCategory(d.Category) {
		return ErrInvalidCategory
	}
	if d.FileSize > MaxFileSize {
		return ErrTooLarge
	}
	return nil
}

// FileType classifies a MIME type for the type filter.
func FileType(mime string) string {
	switch {
	case mime == "application/pdf":
		return TypePDF
	case strings.HasPrefix(mime, "image/"):
		return TypeImage
	case strings.Contains(mime, "document") || strings.Contains(mime, "word"):
		return TypeDocument
	}
	return TypeAll
}

// Matches applies the list predicate: free text over filename, case
// title and client name; category equality; file type.
func Matches(d WithContext, search, category, fileType string) bool {
	if category != "" && category != "all" && d.Category != category {
		return false
	}
	if fileType != "" && fileType != TypeAll && FileType(d.MimeType) != fileType {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Filename), q) ||
		strings.Contains(strings.ToLower(d.CaseTitle), q) ||
		strings.Contains(strings.ToLower(d.ClientName), q)
}

// Filter returns the documents matching the list predicate, keeping order.
func Filter(docs []WithContext, search, category, fileType string) []WithContext {
	out := make([]WithContext, 0, len(docs))
	for _, d := range docs {
		if Matches(d, search, category, fileType) {
			out = append(out, d)
		}
	}
	return out
}

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}
