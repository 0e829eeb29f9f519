// Package auth resolves who is performing a write: a user holding a signed
// token or a service account holding an API key.
package auth

import (
	"context"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

type actorKey struct{}

// WithActor returns a context carrying the authenticated actor
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, if any
func ActorFromContext(ctx context.Context) (*domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(*domain.Actor)
	if !ok || actor == nil {
		return nil, false
	}
	return actor, true
}
