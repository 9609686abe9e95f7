package authctx

import (
	"context"

	"shopledger-backend/internal/domain"
)

type contextKey string

const principalContextKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// FromContext returns the request principal, or the zero (unauthenticated) principal.
func FromContext(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalContextKey).(domain.Principal)
	return p
}
