package access

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository implements Repository on top of go-repository-bun. Invite
// consumption runs in a raw bun transaction so the used_at stamp and the
// admin flag commit or roll back together.
type BunRepository struct {
	db      *bun.DB
	users   repository.Repository[*User]
	invites repository.Repository[*Invite]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:      db,
		users:   NewUserRepository(db),
		invites: NewInviteRepository(db),
	}
}

func (r *BunRepository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := r.users.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "user", id.String())
	}
	return record, nil
}

// SetAdmin upserts the admin flag for the user.
func (r *BunRepository) SetAdmin(ctx context.Context, userID uuid.UUID, email *string, isAdmin bool, now time.Time) (*User, error) {
	record := &User{
		ID:        userID,
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("is_admin = EXCLUDED.is_admin").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("upsert admin flag: %w", err)
	}
	return r.GetUser(ctx, userID)
}

func (r *BunRepository) ListAdminFlags(ctx context.Context) ([]*User, error) {
	records, _, err := r.users.List(ctx)
	return records, err
}

func (r *BunRepository) CreateInvite(ctx context.Context, record *Invite) (*Invite, error) {
	return r.invites.Create(ctx, record)
}

func (r *BunRepository) GetInviteByToken(ctx context.Context, token string) (*Invite, error) {
	record, err := r.invites.GetByIdentifier(ctx, token)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("invite repository error: %w", err)
	}
	return record, nil
}

func (r *BunRepository) ListInvites(ctx context.Context) ([]*Invite, error) {
	records, _, err := r.invites.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("created_at DESC")
	}))
	return records, err
}

// ConsumeInvite stamps the invite and grants the admin flag in one
// transaction; a failure in either write leaves the invite pending.
func (r *BunRepository) ConsumeInvite(ctx context.Context, token string, userID uuid.UUID, now time.Time) (*Invite, error) {
	var consumed *Invite
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		invite := &Invite{}
		if err := tx.NewSelect().
			Model(invite).
			Where("?TableAlias.token = ?", token).
			Scan(ctx); err != nil {
			return ErrInviteNotFound
		}
		switch invite.State(now) {
		case StateConsumed:
			return ErrInviteUsed
		case StateExpired:
			return ErrInviteExpired
		}

		invite.UsedAt = &now
		invite.UsedBy = &userID
		if _, err := tx.NewUpdate().
			Model(invite).
			Column("used_at", "used_by").
			Where("?TableAlias.id = ?", invite.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("stamp invite: %w", err)
		}

		email := invite.Email
		user := &User{
			ID:        userID,
			Email:     &email,
			IsAdmin:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := tx.NewInsert().
			Model(user).
			On("CONFLICT (id) DO UPDATE").
			Set("is_admin = EXCLUDED.is_admin").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("grant admin flag: %w", err)
		}

		consumed = invite
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
