package session

import "context"

type ctxKey struct{}

// Current is what the auth guard resolved for the request.
type Current struct {
	SessionID string
	UserID    uint
	Username  string
}

func IntoContext(ctx context.Context, cur Current) context.Context {
	return context.WithValue(ctx, ctxKey{}, cur)
}

func FromContext(ctx context.Context) (Current, bool) {
	cur, ok := ctx.Value(ctxKey{}).(Current)
	return cur, ok && cur.UserID != 0
}
