package unified

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/SantoNinoNZ/admin-sub000/internal/posts"
	"github.com/SantoNinoNZ/admin-sub000/internal/staticposts"
)

// Source discriminates the two post variants. Every consumption site must
// switch over it exhaustively; an unrecognized value is a programming error
// surfaced before any network call.
type Source string

const (
	SourceDatabase Source = "database"
	SourceStatic   Source = "static"
)

var (
	ErrUnknownSource     = errors.New("unified: post carries an unknown source")
	ErrMissingIdentifier = errors.New("unified: post is missing a stable identifier")
)

// Post is the tagged union over database-backed and file-backed posts.
// Exactly one variant pointer is set, matching Source.
type Post struct {
	Source   Source                  `json:"source"`
	Database *posts.Post             `json:"database,omitempty"`
	Static   *staticposts.StaticPost `json:"static,omitempty"`
}

// FromDatabase wraps a database post.
func FromDatabase(record *posts.Post) Post {
	return Post{Source: SourceDatabase, Database: record}
}

// FromStatic wraps a file-backed post.
func FromStatic(record *staticposts.StaticPost) Post {
	return Post{Source: SourceStatic, Static: record}
}

// Valid reports whether the union is well formed: a known source with the
// matching variant populated and carrying a stable identifier.
func (p Post) Valid() error {
	switch p.Source {
	case SourceDatabase:
		if p.Database == nil || p.Database.ID == uuid.Nil {
			return ErrMissingIdentifier
		}
		return nil
	case SourceStatic:
		if p.Static == nil || p.Static.FileName == "" {
			return ErrMissingIdentifier
		}
		return nil
	default:
		return ErrUnknownSource
	}
}

// EffectiveTimestamp returns updated_at when present, else published_at,
// else the zero time. Merged lists sort descending on this value.
func (p Post) EffectiveTimestamp() time.Time {
	switch p.Source {
	case SourceDatabase:
		return p.Database.EffectiveTimestamp()
	case SourceStatic:
		return p.Static.EffectiveTimestamp()
	default:
		return time.Time{}
	}
}

// Slug returns the post's slug regardless of variant.
func (p Post) Slug() string {
	switch p.Source {
	case SourceDatabase:
		return p.Database.Slug
	case SourceStatic:
		return p.Static.Slug
	default:
		return ""
	}
}

// Title returns the post's title regardless of variant.
func (p Post) Title() string {
	switch p.Source {
	case SourceDatabase:
		return p.Database.Title
	case SourceStatic:
		return p.Static.Title
	default:
		return ""
	}
}

// Body returns the markdown body regardless of variant.
func (p Post) Body() string {
	switch p.Source {
	case SourceDatabase:
		return p.Database.Body
	case SourceStatic:
		return p.Static.Body
	default:
		return ""
	}
}
