package di

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SantoNinoNZ/admin-sub000/internal/access"
	"github.com/SantoNinoNZ/admin-sub000/internal/deploy"
	"github.com/SantoNinoNZ/admin-sub000/internal/runtimeconfig"
	"github.com/SantoNinoNZ/admin-sub000/internal/staticposts"
)

func TestNewContainerDefaultsToMemory(t *testing.T) {
	c := NewContainer(runtimeconfig.DefaultConfig())

	if c.DB() != nil {
		t.Fatal("default container must not open a database")
	}
	if c.PostService() == nil || c.StaticPostService() == nil || c.ContentService() == nil {
		t.Fatal("content services must be wired")
	}
	if c.EventService() == nil || c.AccessService() == nil {
		t.Fatal("event and access services must be wired")
	}
	// No workflow bound, so no deploy service.
	if c.DeployService() != nil {
		t.Fatal("deploy service must stay nil without a workflow binding")
	}

	// Services are live against the in-memory repositories.
	if _, err := c.PostService().List(context.Background()); err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if _, err := c.ContentService().List(context.Background()); err != nil {
		t.Fatalf("list unified content: %v", err)
	}
}

type staticActionsClient struct{}

func (staticActionsClient) ListRuns(context.Context, int) ([]*deploy.Run, error) {
	return []*deploy.Run{{ID: 1, Status: deploy.StatusCompleted, Conclusion: deploy.ConclusionSuccess}}, nil
}

func (staticActionsClient) Dispatch(context.Context, map[string]any) error {
	return nil
}

func TestNewContainerWiresInjectedActionsClient(t *testing.T) {
	c := NewContainer(runtimeconfig.DefaultConfig(), WithActionsClient(staticActionsClient{}))

	if c.DeployService() == nil {
		t.Fatal("deploy service must be wired when an actions client is injected")
	}
	if _, err := c.DeployService().Status(context.Background()); err != nil {
		t.Fatalf("status: %v", err)
	}
}

func TestNewContainerAppliesConfiguredInviteTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Invites.TTL = time.Hour
	c := NewContainer(cfg)

	ctx := context.Background()
	issuer := uuid.New()
	if err := c.AccessService().GrantAdmin(ctx, issuer); err != nil {
		t.Fatalf("grant admin: %v", err)
	}

	invite, err := c.AccessService().CreateInvite(ctx, access.CreateInviteRequest{
		IssuerID: issuer,
		Email:    "newcomer@example.org",
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if got := invite.ExpiresAt.Sub(invite.CreatedAt); got != time.Hour {
		t.Fatalf("want configured 1h invite lifetime, got %v", got)
	}
}

func TestNewContainerGatesGitHubClientsOnFeatureFlags(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Owner = "acme"
	cfg.Content.Repo = "site"

	// Repository configured but both features off: no GitHub clients.
	c := NewContainer(cfg)
	if _, ok := c.contentsClient.(*staticposts.MemoryContentsClient); !ok {
		t.Fatalf("contents client must stay in-memory with static posts disabled, got %T", c.contentsClient)
	}
	if c.actionsClient != nil {
		t.Fatal("actions client must stay unbound with deploy disabled")
	}
	if c.DeployService() != nil {
		t.Fatal("deploy service must stay nil with deploy disabled")
	}

	cfg.Features = runtimeconfig.Features{StaticPosts: true, Deploy: true}
	c = NewContainer(cfg)
	if _, ok := c.contentsClient.(*staticposts.GitHubClient); !ok {
		t.Fatalf("want GitHub contents client, got %T", c.contentsClient)
	}
	if c.actionsClient == nil || c.DeployService() == nil {
		t.Fatal("deploy feature must bind the actions client and service")
	}
}

func TestNewContainerPanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic on invalid config")
		}
	}()

	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "oracle"
	NewContainer(cfg)
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(runtimeconfig.StorageConfig{})
	if err != nil || db != nil {
		t.Fatalf("empty driver must yield no database, got db=%v err=%v", db, err)
	}

	db, err = OpenDatabase(runtimeconfig.StorageConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if db == nil {
		t.Fatal("want a bun handle")
	}
	defer db.Close()

	if _, err := OpenDatabase(runtimeconfig.StorageConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("want error for unknown driver")
	}
}
