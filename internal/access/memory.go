package access

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errAdminWriteFailed = errors.New("access: admin flag write failed")

// MemoryRepository is an in-memory Repository used by tests and by hosts
// running without a database binding.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*User
	invites    map[uuid.UUID]*Invite
	tokenIndex map[string]uuid.UUID

	failAdminWrite bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[uuid.UUID]*User),
		invites:    make(map[uuid.UUID]*Invite),
		tokenIndex: make(map[string]uuid.UUID),
	}
}

// FailAdminWrites makes every subsequent admin-flag write fail, letting
// tests observe that invite consumption rolls back atomically.
func (m *MemoryRepository) FailAdminWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAdminWrite = true
}

func (m *MemoryRepository) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.users[id]
	if !ok {
		return nil, &NotFoundError{Resource: "user", Key: id.String()}
	}
	copied := *rec
	return &copied, nil
}

func (m *MemoryRepository) SetAdmin(_ context.Context, userID uuid.UUID, email *string, isAdmin bool, now time.Time) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAdminWrite {
		return nil, errAdminWriteFailed
	}

	rec, ok := m.users[userID]
	if !ok {
		rec = &User{ID: userID, Email: email, CreatedAt: now}
		m.users[userID] = rec
	}
	rec.IsAdmin = isAdmin
	rec.UpdatedAt = now

	copied := *rec
	return &copied, nil
}

func (m *MemoryRepository) ListAdminFlags(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(m.users))
	for _, rec := range m.users {
		copied := *rec
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateInvite(_ context.Context, record *Invite) (*Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	m.invites[copied.ID] = &copied
	m.tokenIndex[copied.Token] = copied.ID

	out := copied
	return &out, nil
}

func (m *MemoryRepository) GetInviteByToken(_ context.Context, token string) (*Invite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.tokenIndex[token]
	if !ok {
		return nil, ErrInviteNotFound
	}
	copied := *m.invites[id]
	return &copied, nil
}

func (m *MemoryRepository) ListInvites(_ context.Context) ([]*Invite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Invite, 0, len(m.invites))
	for _, rec := range m.invites {
		copied := *rec
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) ConsumeInvite(_ context.Context, token string, userID uuid.UUID, now time.Time) (*Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.tokenIndex[token]
	if !ok {
		return nil, ErrInviteNotFound
	}
	invite := m.invites[id]
	switch invite.State(now) {
	case StateConsumed:
		return nil, ErrInviteUsed
	case StateExpired:
		return nil, ErrInviteExpired
	}

	// The flag write is attempted first so a failure leaves used_at null,
	// matching the transactional database repository.
	if m.failAdminWrite {
		return nil, errAdminWriteFailed
	}

	email := invite.Email
	rec, ok := m.users[userID]
	if !ok {
		rec = &User{ID: userID, Email: &email, CreatedAt: now}
		m.users[userID] = rec
	}
	rec.IsAdmin = true
	rec.UpdatedAt = now

	invite.UsedAt = &now
	invite.UsedBy = &userID

	copied := *invite
	return &copied, nil
}
