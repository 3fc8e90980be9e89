package staticposts

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source is the discriminator carried by every file-backed post.
const Source = "static"

// StaticPost is a post stored as a frontmatter-delimited markdown file in the
// site repository. Category, tags, author, and SEO fields do not exist for
// this variant.
type StaticPost struct {
	ID       uuid.UUID  `json:"id"`
	FileName string     `json:"file_name"`
	Slug     string     `json:"slug"`
	Title    string     `json:"title"`
	Excerpt  string     `json:"excerpt,omitempty"`
	Body     string     `json:"body"`
	ImageURL string     `json:"image_url,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	// SHA is the repository content hash read alongside the file. Writes
	// must present it back; a mismatch means another writer got there first.
	SHA    string `json:"sha"`
	Source string `json:"source"`
}

// EffectiveTimestamp returns the moment used to order posts in merged lists.
func (p *StaticPost) EffectiveTimestamp() time.Time {
	if p == nil || p.Date == nil {
		return time.Time{}
	}
	return *p.Date
}

// FileDescriptor identifies a repository file and its current content hash.
type FileDescriptor struct {
	Name string `json:"name"`
	SHA  string `json:"sha"`
}

var (
	ErrFileNameRequired = errors.New("staticposts: file name is required")
	ErrSHARequired      = errors.New("staticposts: content hash is required")
	ErrTitleRequired    = errors.New("staticposts: title is required")
)

// ConflictError reports an optimistic-concurrency failure: the content hash
// presented with a write no longer matches the repository's current value.
// The caller must reload and retry; nothing was changed.
type ConflictError struct {
	Name        string
	ExpectedSHA string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("staticposts: %s changed since it was read (stale hash %s)", e.Name, e.ExpectedSHA)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// NotFoundError represents a missing repository file.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("staticposts: file %q not found", e.Name)
}
