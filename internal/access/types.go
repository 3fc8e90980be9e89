package access

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the admin-flag side table. Identity itself lives with the host's
// auth provider; this table only records which identities hold admin rights.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Email     *string   `bun:"email" json:"email,omitempty"`
	IsAdmin   bool      `bun:"is_admin,notnull,default:false" json:"is_admin"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// InviteState is the computed lifecycle state of an invitation.
type InviteState string

const (
	StatePending  InviteState = "pending"
	StateConsumed InviteState = "consumed"
	StateExpired  InviteState = "expired"
)

// Invite is a single-use admin invitation. The token is opaque and unique;
// consumption stamps used_at/used_by and flips the admin flag atomically.
type Invite struct {
	bun.BaseModel `bun:"table:invites,alias:inv"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Token     string     `bun:"token,notnull,unique" json:"token"`
	Email     string     `bun:"email,notnull" json:"email"`
	IssuerID  uuid.UUID  `bun:"issuer_id,notnull,type:uuid" json:"issuer_id"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	ExpiresAt time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	UsedAt    *time.Time `bun:"used_at,nullzero" json:"used_at,omitempty"`
	UsedBy    *uuid.UUID `bun:"used_by,type:uuid,nullzero" json:"used_by,omitempty"`

	URL string `bun:"-" json:"url,omitempty"`
}

// State computes the invite's lifecycle state at the given moment. A
// consumed invite stays consumed even after its expiry passes.
func (i *Invite) State(now time.Time) InviteState {
	if i.UsedAt != nil {
		return StateConsumed
	}
	if now.After(i.ExpiresAt) {
		return StateExpired
	}
	return StatePending
}

// DirectoryUser is an identity reported by the host's auth directory.
type DirectoryUser struct {
	ID           uuid.UUID
	Email        string
	Name         string
	LastSignInAt *time.Time
}

// UserEntry is a merged listing row: directory details joined with the
// admin flag. Directory fields stay empty when the directory is
// unreachable.
type UserEntry struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}
