package access

import (
	"context"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor stores the resolved actor in ctx
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFrom returns the actor resolved for the request, or nil
func ActorFrom(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(actorContextKey).(*domain.Actor)
	return actor
}
