package context

import (
	"context"

	"fleetcheck/infrastructure/ledger"
	"fleetcheck/models"
)

type sessionKey struct{}

// NewContextWithSession stores the session and tags ledger writes with its actor.
func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	ctx = ledger.WithActor(ctx, session.ActorKey())
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// Actor returns the session actor key, or "system" without a session.
func Actor(ctx context.Context) string {
	if s, ok := GetSessionFromContext(ctx); ok {
		return s.ActorKey()
	}
	return "system"
}
