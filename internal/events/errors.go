package events

import (
	"errors"
	"fmt"
)

var (
	ErrSlugRequired    = errors.New("events: slug is required")
	ErrSlugInvalid     = errors.New("events: slug contains invalid characters")
	ErrSlugExists      = errors.New("events: slug already exists")
	ErrEventIDRequired = errors.New("events: event id required")
	ErrDayIDRequired   = errors.New("events: day id required")
	ErrKindMismatch    = errors.New("events: operation does not apply to this event kind")
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
