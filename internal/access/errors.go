package access

import (
	"errors"
	"fmt"
)

var (
	ErrUserIDRequired = errors.New("access: user id required")
	ErrNotAdmin       = errors.New("access: user is not an admin")
	ErrSelfRevocation = errors.New("access: admins cannot revoke their own access")
	ErrInviteNotFound = errors.New("access: invite not found")
	ErrInviteUsed     = errors.New("access: invite already used")
	ErrInviteExpired  = errors.New("access: invite expired")
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
