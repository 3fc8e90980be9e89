package posts

import (
	"errors"
	"fmt"
)

var (
	ErrSlugRequired   = errors.New("posts: slug is required")
	ErrSlugInvalid    = errors.New("posts: slug contains invalid characters")
	ErrSlugExists     = errors.New("posts: slug already exists")
	ErrPostIDRequired = errors.New("posts: post id required")
	ErrNameRequired   = errors.New("posts: name is required")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
