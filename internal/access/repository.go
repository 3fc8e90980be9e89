package access

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewUserRepository(db *bun.DB) repository.Repository[*User] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(u *User) string {
			return u.ID.String()
		},
	})
}

func NewInviteRepository(db *bun.DB) repository.Repository[*Invite] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Invite]{
		NewRecord: func() *Invite { return &Invite{} },
		GetID: func(i *Invite) uuid.UUID {
			return i.ID
		},
		SetID: func(i *Invite, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "token"
		},
		GetIdentifierValue: func(i *Invite) string {
			return i.Token
		},
	})
}
