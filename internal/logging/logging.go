package logging

import (
	"context"
	"maps"

	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

const (
	rootModule        = "admin"
	postsModule       = "admin.posts"
	staticPostsModule = "admin.staticposts"
	contentModule     = "admin.content"
	eventsModule      = "admin.events"
	accessModule      = "admin.access"
	deployModule      = "admin.deploy"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PostsLogger returns the logger namespace reserved for the database post service.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// StaticPostsLogger returns the logger namespace reserved for the file-backed post adapter.
func StaticPostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, staticPostsModule)
}

// ContentLogger returns the logger namespace reserved for the unified content service.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// EventsLogger returns the logger namespace reserved for the events service.
func EventsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, eventsModule)
}

// AccessLogger returns the logger namespace reserved for authorization and invites.
func AccessLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, accessModule)
}

// DeployLogger returns the logger namespace reserved for build status and rebuilds.
func DeployLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, deployModule)
}

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension. Callers can pass nil or an
// empty map to skip allocation safely.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
