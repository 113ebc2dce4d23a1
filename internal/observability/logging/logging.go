// Package logging builds the service's slog handler and carries request
// scoped values through context.
package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Environment string

const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// Module names the component a log line comes from.
type Module string

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	moduleKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func WithModule(ctx context.Context, m Module) context.Context {
	return context.WithValue(ctx, moduleKey, m)
}

func ModuleFromContext(ctx context.Context) (Module, bool) {
	m, ok := ctx.Value(moduleKey).(Module)
	return m, ok
}

// ValidateAndExtractRequestID returns id when it is a UUID and a fresh UUID
// otherwise, so forwarded headers are never empty or attacker controlled.
func ValidateAndExtractRequestID(id string) string {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewString()
}
