package runtimeconfig

import (
	"errors"
	"time"
)

var (
	ErrStorageDriverUnknown   = errors.New("admin: unknown storage driver")
	ErrStorageDSNRequired     = errors.New("admin: storage dsn required")
	ErrContentRepoRequired    = errors.New("admin: content repository owner and name required")
	ErrDeployWorkflowRequired = errors.New("admin: deploy workflow file required")
	ErrLoggingLevelInvalid    = errors.New("admin: invalid logging level")
	ErrPollIntervalInvalid    = errors.New("admin: poll interval must be positive")
)

// Config is the module configuration hosts pass to admin.New.
type Config struct {
	Storage  StorageConfig
	Content  ContentConfig
	Deploy   DeployConfig
	Invites  InviteConfig
	Cache    CacheConfig
	Logging  LoggingConfig
	Features Features
}

// StorageConfig selects the database binding.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres". Empty keeps the in-memory
	// repositories, which suit tests and previews.
	Driver string
	DSN    string
}

// ContentConfig locates the file-backed posts inside the site repository.
type ContentConfig struct {
	Owner     string
	Repo      string
	Branch    string
	Dir       string
	Token     string
	MaxFiles  int
	BatchSize int
}

// Configured reports whether a site repository is bound.
func (c ContentConfig) Configured() bool {
	return c.Owner != "" && c.Repo != ""
}

// DeployConfig locates the site build workflow.
type DeployConfig struct {
	WorkflowFile string
	Branch       string
	PollInterval time.Duration
}

// InviteConfig controls invitation issuing.
type InviteConfig struct {
	Origin string
	TTL    time.Duration
}

// CacheConfig controls repository-level caching.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig wires go-logger options through the module.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles optional module areas.
type Features struct {
	StaticPosts bool
	Deploy      bool
}

// DefaultConfig returns the configuration used when hosts pass nothing.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Branch:    "main",
			Dir:       "posts",
			MaxFiles:  50,
			BatchSize: 5,
		},
		Deploy: DeployConfig{
			WorkflowFile: "build.yml",
			Branch:       "main",
			PollInterval: 10 * time.Second,
		},
		Invites: InviteConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Features: Features{},
	}
}

// Validate checks cross-field consistency before the container is built.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "", "sqlite", "postgres":
	default:
		return ErrStorageDriverUnknown
	}
	if c.Storage.Driver != "" && c.Storage.DSN == "" {
		return ErrStorageDSNRequired
	}
	if c.Features.StaticPosts && !c.Content.Configured() {
		return ErrContentRepoRequired
	}
	if c.Features.Deploy {
		// The workflow dispatch client targets the content repository, so
		// deploying requires the repository to be configured too.
		if !c.Content.Configured() {
			return ErrContentRepoRequired
		}
		if c.Deploy.WorkflowFile == "" {
			return ErrDeployWorkflowRequired
		}
		if c.Deploy.PollInterval < 0 {
			return ErrPollIntervalInvalid
		}
	}
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}
	return nil
}
