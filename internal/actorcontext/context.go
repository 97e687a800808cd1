package actorcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Actor identifies the authenticated user performing a request.
type Actor struct {
	ID   snowflake.ID
	Name string
	Role string
}

// ActorContextKey is the request context key for the acting user.
type ActorContextKey struct{}

// WithActor stores the acting user in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, actor)
}

// ActorFromContext returns the acting user from context, if set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ActorContextKey{}).(Actor)
	if !ok || actor.ID == 0 {
		return Actor{}, false
	}
	return actor, true
}
