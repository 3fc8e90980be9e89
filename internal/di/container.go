package di

import (
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/SantoNinoNZ/admin-sub000/internal/access"
	"github.com/SantoNinoNZ/admin-sub000/internal/deploy"
	"github.com/SantoNinoNZ/admin-sub000/internal/events"
	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/internal/logging/gologger"
	"github.com/SantoNinoNZ/admin-sub000/internal/posts"
	"github.com/SantoNinoNZ/admin-sub000/internal/runtimeconfig"
	"github.com/SantoNinoNZ/admin-sub000/internal/staticposts"
	"github.com/SantoNinoNZ/admin-sub000/internal/unified"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

// Container wires module dependencies. Without a database binding every
// repository defaults to its in-memory implementation, and without a site
// repository binding the contents and actions clients default to in-memory
// fakes, so the module is usable in tests and previews out of the box.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	provider      interfaces.LoggerProvider

	postRepo     posts.PostRepository
	categoryRepo posts.CategoryRepository
	tagRepo      posts.TagRepository
	authorRepo   posts.AuthorRepository
	eventRepo    events.EventRepository
	accessRepo   access.Repository

	contentsClient staticposts.ContentsClient
	actionsClient  deploy.ActionsClient
	directory      access.DirectoryClient

	postSvc       posts.Service
	staticPostSvc staticposts.Service
	contentSvc    unified.Service
	eventSvc      events.Service
	accessSvc     access.Service
	deploySvc     deploy.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB binds the repositories to a database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache enables repository caching for lookup-heavy repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the default go-logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.provider = provider
	}
}

// WithContentsClient overrides the site repository contents binding.
func WithContentsClient(client staticposts.ContentsClient) Option {
	return func(c *Container) {
		c.contentsClient = client
	}
}

// WithActionsClient overrides the build workflow binding.
func WithActionsClient(client deploy.ActionsClient) Option {
	return func(c *Container) {
		c.actionsClient = client
	}
}

// WithDirectory attaches the host's auth directory for user listing.
func WithDirectory(directory access.DirectoryClient) Option {
	return func(c *Container) {
		c.directory = directory
	}
}

// WithPostService overrides the default post service binding.
func WithPostService(svc posts.Service) Option {
	return func(c *Container) {
		c.postSvc = svc
	}
}

// WithStaticPostService overrides the default static post service binding.
func WithStaticPostService(svc staticposts.Service) Option {
	return func(c *Container) {
		c.staticPostSvc = svc
	}
}

// WithEventService overrides the default event service binding.
func WithEventService(svc events.Service) Option {
	return func(c *Container) {
		c.eventSvc = svc
	}
}

// WithAccessService overrides the default access service binding.
func WithAccessService(svc access.Service) Option {
	return func(c *Container) {
		c.accessSvc = svc
	}
}

// NewContainer builds the dependency graph for the module.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) *Container {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	c := &Container{Config: cfg}

	for _, opt := range opts {
		opt(c)
	}

	c.configureLogging()
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureClients()
	c.configureServices()

	return c
}

// configureCacheDefaults builds a cache service from the configuration when
// caching is enabled and the host did not inject one. Config.Cache.DefaultTTL
// becomes the cache TTL.
func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureLogging() {
	if c.provider != nil {
		return
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		// Misconfigured logging never takes the module down; services fall
		// back to no-op loggers.
		c.provider = nil
		return
	}
	c.provider = provider
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		c.postRepo = posts.NewMemoryPostRepository()
		c.categoryRepo = posts.NewMemoryCategoryRepository()
		c.tagRepo = posts.NewMemoryTagRepository()
		c.authorRepo = posts.NewMemoryAuthorRepository()
		c.eventRepo = events.NewMemoryEventRepository()
		c.accessRepo = access.NewMemoryRepository()
		return
	}

	if c.Config.Cache.Enabled && c.cacheService != nil {
		c.postRepo = posts.NewBunPostRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.categoryRepo = posts.NewBunCategoryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.tagRepo = posts.NewBunTagRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.authorRepo = posts.NewBunAuthorRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.postRepo = posts.NewBunPostRepository(c.bunDB)
		c.categoryRepo = posts.NewBunCategoryRepository(c.bunDB)
		c.tagRepo = posts.NewBunTagRepository(c.bunDB)
		c.authorRepo = posts.NewBunAuthorRepository(c.bunDB)
	}
	c.eventRepo = events.NewBunEventRepository(c.bunDB)
	c.accessRepo = access.NewBunRepository(c.bunDB)
}

func (c *Container) configureClients() {
	if c.contentsClient == nil {
		if c.Config.Features.StaticPosts && c.Config.Content.Configured() {
			c.contentsClient = staticposts.NewGitHubClient(nil, c.Config.Content.Token, staticposts.GitHubClientConfig{
				Owner:  c.Config.Content.Owner,
				Repo:   c.Config.Content.Repo,
				Branch: c.Config.Content.Branch,
				Dir:    c.Config.Content.Dir,
			})
		} else {
			c.contentsClient = staticposts.NewMemoryContentsClient()
		}
	}

	if c.actionsClient == nil && c.Config.Features.Deploy && c.Config.Content.Configured() {
		c.actionsClient = deploy.NewGitHubActionsClient(nil, c.Config.Content.Token, deploy.GitHubActionsConfig{
			Owner:        c.Config.Content.Owner,
			Repo:         c.Config.Content.Repo,
			Branch:       c.Config.Deploy.Branch,
			WorkflowFile: c.Config.Deploy.WorkflowFile,
		})
	}
}

func (c *Container) configureServices() {
	if c.postSvc == nil {
		c.postSvc = posts.NewService(
			c.postRepo,
			c.categoryRepo,
			c.tagRepo,
			c.authorRepo,
			posts.WithLogger(logging.PostsLogger(c.provider)),
		)
	}

	if c.staticPostSvc == nil {
		staticOpts := []staticposts.ServiceOption{
			staticposts.WithLogger(logging.StaticPostsLogger(c.provider)),
		}
		if c.Config.Content.MaxFiles > 0 {
			staticOpts = append(staticOpts, staticposts.WithMaxFiles(c.Config.Content.MaxFiles))
		}
		if c.Config.Content.BatchSize > 0 {
			staticOpts = append(staticOpts, staticposts.WithBatchSize(c.Config.Content.BatchSize))
		}
		c.staticPostSvc = staticposts.NewService(c.contentsClient, staticOpts...)
	}

	if c.contentSvc == nil {
		c.contentSvc = unified.NewService(
			c.postSvc,
			c.staticPostSvc,
			unified.WithLogger(logging.ContentLogger(c.provider)),
		)
	}

	if c.eventSvc == nil {
		c.eventSvc = events.NewService(
			c.eventRepo,
			events.WithLogger(logging.EventsLogger(c.provider)),
		)
	}

	if c.accessSvc == nil {
		accessOpts := []access.ServiceOption{
			access.WithLogger(logging.AccessLogger(c.provider)),
			access.WithInviteOrigin(c.Config.Invites.Origin),
		}
		if c.Config.Invites.TTL > 0 {
			accessOpts = append(accessOpts, access.WithDefaultTTL(c.Config.Invites.TTL))
		}
		if c.directory != nil {
			accessOpts = append(accessOpts, access.WithDirectory(c.directory))
		}
		c.accessSvc = access.NewService(c.accessRepo, accessOpts...)
	}

	if c.deploySvc == nil && c.actionsClient != nil {
		c.deploySvc = deploy.NewService(
			c.actionsClient,
			deploy.WithLogger(logging.DeployLogger(c.provider)),
		)
	}
}

// DB returns the bound database, nil when running on memory repositories.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// LoggerProvider returns the provider services draw their loggers from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.provider
}

// PostService returns the database post service.
func (c *Container) PostService() posts.Service {
	return c.postSvc
}

// StaticPostService returns the file-backed post service.
func (c *Container) StaticPostService() staticposts.Service {
	return c.staticPostSvc
}

// ContentService returns the unified content service.
func (c *Container) ContentService() unified.Service {
	return c.contentSvc
}

// EventService returns the calendar event service.
func (c *Container) EventService() events.Service {
	return c.eventSvc
}

// AccessService returns the authorization and invitation service.
func (c *Container) AccessService() access.Service {
	return c.accessSvc
}

// DeployService returns the build pipeline service, nil when no workflow is
// bound.
func (c *Container) DeployService() deploy.Service {
	return c.deploySvc
}
