package admin

import (
	"context"
	"errors"

	"github.com/SantoNinoNZ/admin-sub000/internal/access"
	"github.com/SantoNinoNZ/admin-sub000/internal/deploy"
	"github.com/SantoNinoNZ/admin-sub000/internal/di"
	"github.com/SantoNinoNZ/admin-sub000/internal/events"
	"github.com/SantoNinoNZ/admin-sub000/internal/posts"
	"github.com/SantoNinoNZ/admin-sub000/internal/staticposts"
	"github.com/SantoNinoNZ/admin-sub000/internal/unified"
)

// PostService exports the database post service contract for consumers of
// the admin package.
type PostService = posts.Service

// StaticPostService exports the file-backed post service contract.
type StaticPostService = staticposts.Service

// ContentService exports the unified content service contract.
type ContentService = unified.Service

// EventService exports the calendar event service contract.
type EventService = events.Service

// AccessService exports the authorization and invitation service contract.
type AccessService = access.Service

// DeployService exports the build pipeline service contract.
type DeployService = deploy.Service

// ErrDeployUnbound is returned when build watching is requested without a
// workflow binding.
var ErrDeployUnbound = errors.New("admin: deploy workflow not configured")

// Module represents the top level admin runtime façade.
type Module struct {
	container *di.Container
}

// New constructs an admin module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Module{container: di.NewContainer(cfg, opts...)}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the configured database post service.
func (m *Module) Posts() PostService {
	return m.container.PostService()
}

// StaticPosts returns the configured file-backed post service.
func (m *Module) StaticPosts() StaticPostService {
	return m.container.StaticPostService()
}

// Content returns the configured unified content service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Events returns the configured event service.
func (m *Module) Events() EventService {
	return m.container.EventService()
}

// Access returns the configured authorization service.
func (m *Module) Access() AccessService {
	return m.container.AccessService()
}

// Deploy returns the configured build pipeline service, nil when no
// workflow is bound.
func (m *Module) Deploy() DeployService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.DeployService()
}

// WatchBuild starts a poller delivering build snapshots to onUpdate until
// the pipeline reaches a terminal state or the context is cancelled. The
// returned poller's Stop halts it early.
func (m *Module) WatchBuild(ctx context.Context, onUpdate func(deploy.Snapshot)) (*deploy.Poller, error) {
	svc := m.Deploy()
	if svc == nil {
		return nil, ErrDeployUnbound
	}

	opts := []deploy.PollerOption{}
	if interval := m.container.Config.Deploy.PollInterval; interval > 0 {
		opts = append(opts, deploy.WithPollInterval(interval))
	}

	poller := deploy.NewPoller(svc, onUpdate, opts...)
	if err := poller.Start(ctx); err != nil {
		return nil, err
	}
	return poller, nil
}
