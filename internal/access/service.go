package access

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

// DefaultInviteTTL is how long a fresh invite stays redeemable.
const DefaultInviteTTL = 7 * 24 * time.Hour

const tokenBytes = 32

// Service exposes admin authorization and invitation use cases.
type Service interface {
	IsAuthorizedAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	GrantAdmin(ctx context.Context, userID uuid.UUID) error
	RevokeAdmin(ctx context.Context, actorID, userID uuid.UUID) error

	CreateInvite(ctx context.Context, req CreateInviteRequest) (*Invite, error)
	ConsumeInvite(ctx context.Context, token string, userID uuid.UUID) (*Invite, error)
	ListInvites(ctx context.Context) ([]*Invite, error)

	ListUsers(ctx context.Context) ([]UserEntry, error)
}

// CreateInviteRequest captures the fields for issuing an invitation. A zero
// TTL falls back to the service default.
type CreateInviteRequest struct {
	IssuerID uuid.UUID
	Email    string
	TTL      time.Duration
}

// Validate checks the request before any repository call.
func (r CreateInviteRequest) Validate() error {
	errs := validation.Errors{}
	if r.IssuerID == uuid.Nil {
		errs["issuer_id"] = validation.NewError("admin.access.issuer_required", "issuer is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = validation.NewError("admin.access.email_required", "email is required")
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errs["email"] = validation.NewError("admin.access.email_invalid", "email address is invalid")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Repository abstracts storage operations for admin flags and invites.
// ConsumeInvite must stamp the invite and grant the flag atomically.
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	SetAdmin(ctx context.Context, userID uuid.UUID, email *string, isAdmin bool, now time.Time) (*User, error)
	ListAdminFlags(ctx context.Context) ([]*User, error)

	CreateInvite(ctx context.Context, record *Invite) (*Invite, error)
	GetInviteByToken(ctx context.Context, token string) (*Invite, error)
	ListInvites(ctx context.Context) ([]*Invite, error)
	ConsumeInvite(ctx context.Context, token string, userID uuid.UUID, now time.Time) (*Invite, error)
}

// DirectoryClient reads identities from the host's auth provider.
type DirectoryClient interface {
	ListUsers(ctx context.Context) ([]DirectoryUser, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDirectory attaches the host's auth directory for user listing.
func WithDirectory(directory DirectoryClient) ServiceOption {
	return func(s *service) {
		s.directory = directory
	}
}

// WithInviteOrigin sets the origin used to build invite URLs, e.g.
// "https://admin.example.org".
func WithInviteOrigin(origin string) ServiceOption {
	return func(s *service) {
		s.origin = strings.TrimRight(origin, "/")
	}
}

// WithTokenSource overrides the invite token generator.
func WithTokenSource(source func() (string, error)) ServiceOption {
	return func(s *service) {
		if source != nil {
			s.token = source
		}
	}
}

// WithDefaultTTL sets the lifetime applied to invites issued without an
// explicit per-request TTL.
func WithDefaultTTL(ttl time.Duration) ServiceOption {
	return func(s *service) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

type service struct {
	repo       Repository
	directory  DirectoryClient
	origin     string
	defaultTTL time.Duration
	now        func() time.Time
	id         IDGenerator
	token      func() (string, error)
	logger     interfaces.Logger
}

// NewService constructs an access service with the required dependencies.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:       repo,
		defaultTTL: DefaultInviteTTL,
		now:        time.Now,
		id:         uuid.New,
		token:      randomToken,
		logger:     logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsAuthorizedAdmin answers from the admin-flag table on every call; the
// result is never served from cached state.
func (s *service) IsAuthorizedAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, ErrUserIDRequired
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}

// GrantAdmin flips the admin flag on. Granting an existing admin is a
// no-op.
func (s *service) GrantAdmin(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUserIDRequired
	}
	if _, err := s.repo.SetAdmin(ctx, userID, nil, true, s.now()); err != nil {
		return err
	}
	s.logger.Info("admin granted", "user_id", userID.String())
	return nil
}

// RevokeAdmin flips the admin flag off. Self-revocation is rejected before
// any write so the last admin cannot lock everyone out by accident.
func (s *service) RevokeAdmin(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == uuid.Nil || userID == uuid.Nil {
		return ErrUserIDRequired
	}
	if actorID == userID {
		return ErrSelfRevocation
	}
	if _, err := s.repo.SetAdmin(ctx, userID, nil, false, s.now()); err != nil {
		return err
	}
	s.logger.Info("admin revoked", "user_id", userID.String(), "actor_id", actorID.String())
	return nil
}

// CreateInvite issues a single-use invitation. Only admins can issue.
func (s *service) CreateInvite(ctx context.Context, req CreateInviteRequest) (*Invite, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	isAdmin, err := s.IsAuthorizedAdmin(ctx, req.IssuerID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrNotAdmin
	}

	token, err := s.token()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	record := &Invite{
		ID:        s.id(),
		Token:     token,
		Email:     strings.TrimSpace(req.Email),
		IssuerID:  req.IssuerID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	created, err := s.repo.CreateInvite(ctx, record)
	if err != nil {
		return nil, err
	}
	created.URL = s.inviteURL(created.Token)

	s.logger.Info("invite created", "invite_id", created.ID.String(), "email", created.Email)
	return created, nil
}

// ConsumeInvite redeems the token for the user. The invite stamp and the
// admin flag commit together or not at all.
func (s *service) ConsumeInvite(ctx context.Context, token string, userID uuid.UUID) (*Invite, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInviteNotFound
	}
	if userID == uuid.Nil {
		return nil, ErrUserIDRequired
	}

	consumed, err := s.repo.ConsumeInvite(ctx, token, userID, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("invite consumed", "invite_id", consumed.ID.String(), "user_id", userID.String())
	return consumed, nil
}

// ListInvites returns every invitation with its computed state and URL.
func (s *service) ListInvites(ctx context.Context) ([]*Invite, error) {
	invites, err := s.repo.ListInvites(ctx)
	if err != nil {
		return nil, err
	}
	for _, invite := range invites {
		invite.URL = s.inviteURL(invite.Token)
	}
	return invites, nil
}

// ListUsers merges directory identities with admin flags. When the
// directory is unreachable the listing degrades to admin-flag rows only
// instead of failing.
func (s *service) ListUsers(ctx context.Context) ([]UserEntry, error) {
	flags, err := s.repo.ListAdminFlags(ctx)
	if err != nil {
		return nil, err
	}
	adminByID := make(map[uuid.UUID]*User, len(flags))
	for _, flag := range flags {
		adminByID[flag.ID] = flag
	}

	if s.directory == nil {
		return s.flagOnlyEntries(flags), nil
	}

	directoryUsers, err := s.directory.ListUsers(ctx)
	if err != nil {
		s.logger.Warn("directory unavailable, listing admin flags only", "error", err)
		return s.flagOnlyEntries(flags), nil
	}

	out := make([]UserEntry, 0, len(directoryUsers))
	seen := make(map[uuid.UUID]struct{}, len(directoryUsers))
	for _, du := range directoryUsers {
		entry := UserEntry{
			ID:           du.ID,
			Email:        du.Email,
			Name:         du.Name,
			LastSignInAt: du.LastSignInAt,
		}
		if flag, ok := adminByID[du.ID]; ok {
			entry.IsAdmin = flag.IsAdmin
		}
		seen[du.ID] = struct{}{}
		out = append(out, entry)
	}

	// Flagged identities the directory no longer reports still show up.
	for _, flag := range flags {
		if _, ok := seen[flag.ID]; ok {
			continue
		}
		out = append(out, flagEntry(flag))
	}
	return out, nil
}

func (s *service) flagOnlyEntries(flags []*User) []UserEntry {
	out := make([]UserEntry, 0, len(flags))
	for _, flag := range flags {
		out = append(out, flagEntry(flag))
	}
	return out
}

func flagEntry(flag *User) UserEntry {
	entry := UserEntry{ID: flag.ID, IsAdmin: flag.IsAdmin}
	if flag.Email != nil {
		entry.Email = *flag.Email
	}
	return entry
}

func (s *service) inviteURL(token string) string {
	if s.origin == "" {
		return "/invite?token=" + token
	}
	return s.origin + "/invite?token=" + token
}

func randomToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
