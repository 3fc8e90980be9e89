package access

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeDirectory struct {
	users []DirectoryUser
	err   error
}

func (f *fakeDirectory) ListUsers(context.Context) ([]DirectoryUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func grantAdmin(t *testing.T, svc Service, id uuid.UUID) {
	t.Helper()
	if err := svc.GrantAdmin(context.Background(), id); err != nil {
		t.Fatalf("grant admin: %v", err)
	}
}

func TestIsAuthorizedAdmin(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	admin := uuid.New()
	stranger := uuid.New()

	grantAdmin(t, svc, admin)

	ok, err := svc.IsAuthorizedAdmin(context.Background(), admin)
	if err != nil || !ok {
		t.Fatalf("want admin authorized, got ok=%v err=%v", ok, err)
	}

	// Unknown users are simply not admins, not an error.
	ok, err = svc.IsAuthorizedAdmin(context.Background(), stranger)
	if err != nil || ok {
		t.Fatalf("want stranger unauthorized without error, got ok=%v err=%v", ok, err)
	}
}

func TestGrantAdminIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	admin := uuid.New()

	grantAdmin(t, svc, admin)
	grantAdmin(t, svc, admin)

	ok, err := svc.IsAuthorizedAdmin(context.Background(), admin)
	if err != nil || !ok {
		t.Fatalf("want admin after repeated grants, got ok=%v err=%v", ok, err)
	}
}

func TestRevokeAdminRejectsSelfRevocation(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	admin := uuid.New()
	grantAdmin(t, svc, admin)

	err := svc.RevokeAdmin(context.Background(), admin, admin)
	if !errors.Is(err, ErrSelfRevocation) {
		t.Fatalf("want ErrSelfRevocation, got %v", err)
	}

	// The rejection happens before any write.
	ok, err := svc.IsAuthorizedAdmin(context.Background(), admin)
	if err != nil || !ok {
		t.Fatalf("admin flag must survive a rejected self-revocation, got ok=%v err=%v", ok, err)
	}

	other := uuid.New()
	grantAdmin(t, svc, other)
	if err := svc.RevokeAdmin(context.Background(), admin, other); err != nil {
		t.Fatalf("revoke other admin: %v", err)
	}
	ok, _ = svc.IsAuthorizedAdmin(context.Background(), other)
	if ok {
		t.Fatal("revoked user must not remain admin")
	}
}

func TestCreateInviteRequiresAdminIssuer(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	_, err := svc.CreateInvite(context.Background(), CreateInviteRequest{
		IssuerID: uuid.New(),
		Email:    "new.admin@example.org",
	})
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("want ErrNotAdmin, got %v", err)
	}
}

func TestCreateInviteDefaultsAndURL(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	svc := NewService(repo,
		WithClock(fixedClock(now)),
		WithInviteOrigin("https://admin.example.org/"),
	)
	admin := uuid.New()
	grantAdmin(t, svc, admin)

	invite, err := svc.CreateInvite(context.Background(), CreateInviteRequest{
		IssuerID: admin,
		Email:    "new.admin@example.org",
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if invite.Token == "" {
		t.Fatal("invite must carry a token")
	}
	if !invite.ExpiresAt.Equal(now.Add(DefaultInviteTTL)) {
		t.Fatalf("want default 7 day expiry, got %s", invite.ExpiresAt)
	}
	if want := "https://admin.example.org/invite?token=" + invite.Token; invite.URL != want {
		t.Fatalf("want URL %q, got %q", want, invite.URL)
	}
	if invite.State(now) != StatePending {
		t.Fatalf("fresh invite must be pending, got %s", invite.State(now))
	}
}

func TestCreateInviteUsesConfiguredDefaultTTL(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryRepository(),
		WithClock(fixedClock(now)),
		WithDefaultTTL(time.Hour),
	)
	admin := uuid.New()
	grantAdmin(t, svc, admin)

	invite, err := svc.CreateInvite(context.Background(), CreateInviteRequest{
		IssuerID: admin,
		Email:    "new.admin@example.org",
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if !invite.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("want configured 1h expiry, got %s", invite.ExpiresAt)
	}

	// An explicit per-request TTL still wins over the configured default.
	explicit, err := svc.CreateInvite(context.Background(), CreateInviteRequest{
		IssuerID: admin,
		Email:    "other.admin@example.org",
		TTL:      30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("create invite with TTL: %v", err)
	}
	if !explicit.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("want explicit 30m expiry, got %s", explicit.ExpiresAt)
	}
}

func TestInviteStateMachine(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	used := now.Add(time.Hour)
	invite := &Invite{ExpiresAt: now.Add(DefaultInviteTTL)}

	if got := invite.State(now); got != StatePending {
		t.Fatalf("want pending, got %s", got)
	}
	if got := invite.State(now.Add(8 * 24 * time.Hour)); got != StateExpired {
		t.Fatalf("want expired, got %s", got)
	}

	invite.UsedAt = &used
	// Consumed wins over expired once used_at is set.
	if got := invite.State(now.Add(8 * 24 * time.Hour)); got != StateConsumed {
		t.Fatalf("want consumed, got %s", got)
	}
}

func TestConsumeInviteGrantsAdmin(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	svc := NewService(repo, WithClock(fixedClock(now)))
	admin := uuid.New()
	grantAdmin(t, svc, admin)

	invite, err := svc.CreateInvite(context.Background(), CreateInviteRequest{
		IssuerID: admin,
		Email:    "new.admin@example.org",
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}

	newcomer := uuid.New()
	consumed, err := svc.ConsumeInvite(context.Background(), invite.Token, newcomer)
	if err != nil {
		t.Fatalf("consume invite: %v", err)
	}
	if consumed.UsedAt == nil || consumed.UsedBy == nil || *consumed.UsedBy != newcomer {
		t.Fatalf("consumed invite must record user, got %+v", consumed)
	}

	ok, err := svc.IsAuthorizedAdmin(context.Background(), newcomer)
	if err != nil || !ok {
		t.Fatalf("consumer must become admin, got ok=%v err=%v", ok, err)
	}

	// Second redemption fails: single use.
	if _, err := svc.ConsumeInvite(context.Background(), invite.Token, uuid.New()); !errors.Is(err, ErrInviteUsed) {
		t.Fatalf("want ErrInviteUsed, got %v", err)
	}
}

func TestConsumeInviteRejectsExpired(t *testing.T) {
	start := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	current := start
	repo := NewMemoryRepository()
	svc := NewService(repo, WithClock(func() time.Time { return current }))
	admin := uuid.New()
	grantAdmin(t, svc, admin)

	invite, err := svc.CreateInvite(context.Background(), CreateInviteRequest{
		IssuerID: admin,
		Email:    "late@example.org",
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}

	current = start.Add(2 * time.Hour)
	if _, err := svc.ConsumeInvite(context.Background(), invite.Token, uuid.New()); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("want ErrInviteExpired, got %v", err)
	}

	if _, err := svc.ConsumeInvite(context.Background(), "no-such-token", uuid.New()); !errors.Is(err, ErrInviteNotFound) {
		t.Fatalf("want ErrInviteNotFound, got %v", err)
	}
}

func TestConsumeInviteLeavesInvitePendingWhenFlagWriteFails(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	svc := NewService(repo, WithClock(fixedClock(now)))
	admin := uuid.New()
	grantAdmin(t, svc, admin)

	invite, err := svc.CreateInvite(context.Background(), CreateInviteRequest{
		IssuerID: admin,
		Email:    "unlucky@example.org",
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}

	repo.FailAdminWrites()
	if _, err := svc.ConsumeInvite(context.Background(), invite.Token, uuid.New()); err == nil {
		t.Fatal("want consumption to fail when the flag write fails")
	}

	stored, err := repo.GetInviteByToken(context.Background(), invite.Token)
	if err != nil {
		t.Fatalf("reload invite: %v", err)
	}
	if stored.UsedAt != nil {
		t.Fatal("used_at must stay null when the flag write fails")
	}
	if stored.State(now) != StatePending {
		t.Fatalf("invite must remain pending, got %s", stored.State(now))
	}
}

func TestListUsersMergesDirectory(t *testing.T) {
	repo := NewMemoryRepository()
	admin := uuid.New()
	visitor := uuid.New()
	orphan := uuid.New()

	directory := &fakeDirectory{users: []DirectoryUser{
		{ID: admin, Email: "admin@example.org", Name: "Admin"},
		{ID: visitor, Email: "visitor@example.org", Name: "Visitor"},
	}}
	svc := NewService(repo, WithDirectory(directory))
	grantAdmin(t, svc, admin)
	grantAdmin(t, svc, orphan)

	entries, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}

	byID := make(map[uuid.UUID]UserEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}
	if !byID[admin].IsAdmin || byID[admin].Email != "admin@example.org" {
		t.Fatalf("unexpected admin entry %+v", byID[admin])
	}
	if byID[visitor].IsAdmin {
		t.Fatal("visitor must not be flagged admin")
	}
	if !byID[orphan].IsAdmin {
		t.Fatal("flagged identity missing from the directory must still list as admin")
	}
}

func TestListUsersDegradesWhenDirectoryFails(t *testing.T) {
	repo := NewMemoryRepository()
	admin := uuid.New()
	directory := &fakeDirectory{err: errors.New("directory 503")}
	svc := NewService(repo, WithDirectory(directory))
	grantAdmin(t, svc, admin)

	entries, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("listing must not fail when the directory is down, got %v", err)
	}
	if len(entries) != 1 || entries[0].ID != admin || !entries[0].IsAdmin {
		t.Fatalf("want the admin flag row only, got %+v", entries)
	}
}

func TestRandomTokensAreURLSafeAndUnique(t *testing.T) {
	first, err := randomToken()
	if err != nil {
		t.Fatalf("random token: %v", err)
	}
	second, err := randomToken()
	if err != nil {
		t.Fatalf("random token: %v", err)
	}
	if first == second {
		t.Fatal("tokens must be unique")
	}
	if strings.ContainsAny(first, "+/=") {
		t.Fatalf("token must be base64url without padding, got %q", first)
	}
}
