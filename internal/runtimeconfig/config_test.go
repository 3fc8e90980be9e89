package runtimeconfig

import (
	"errors"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestValidateRejectsInconsistentConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Storage.Driver = "oracle" },
			want:   ErrStorageDriverUnknown,
		},
		{
			name:   "driver without dsn",
			mutate: func(c *Config) { c.Storage.Driver = "sqlite" },
			want:   ErrStorageDSNRequired,
		},
		{
			name:   "static posts without repository",
			mutate: func(c *Config) { c.Features.StaticPosts = true },
			want:   ErrContentRepoRequired,
		},
		{
			name:   "deploy without repository",
			mutate: func(c *Config) { c.Features.Deploy = true },
			want:   ErrContentRepoRequired,
		},
		{
			name: "deploy without workflow",
			mutate: func(c *Config) {
				c.Features.Deploy = true
				c.Content.Owner = "acme"
				c.Content.Repo = "site"
				c.Deploy.WorkflowFile = ""
			},
			want: ErrDeployWorkflowRequired,
		},
		{
			name:   "bad logging level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			want:   ErrLoggingLevelInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}
