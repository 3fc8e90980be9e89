package admin

import "github.com/SantoNinoNZ/admin-sub000/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrContentRepoRequired    = runtimeconfig.ErrContentRepoRequired
	ErrDeployWorkflowRequired = runtimeconfig.ErrDeployWorkflowRequired
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrPollIntervalInvalid    = runtimeconfig.ErrPollIntervalInvalid
)

type (
	Config        = runtimeconfig.Config
	StorageConfig = runtimeconfig.StorageConfig
	ContentConfig = runtimeconfig.ContentConfig
	DeployConfig  = runtimeconfig.DeployConfig
	InviteConfig  = runtimeconfig.InviteConfig
	CacheConfig   = runtimeconfig.CacheConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	Features      = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
