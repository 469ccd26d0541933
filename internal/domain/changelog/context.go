package changelog

import "context"

type userKey struct{}

// WithUser attaches the acting-user label recorded on entries.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the acting-user label attached to ctx.
func UserFrom(ctx context.Context) string {
	v, _ := ctx.Value(userKey{}).(string)
	return v
}
