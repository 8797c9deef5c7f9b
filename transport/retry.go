package transport

import "context"

type retriedKey struct{}

// MarkRetried returns a context whose requests are never retried after a 401.
func MarkRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

// Retried reports whether ctx belongs to a request that was already retried once.
func Retried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}
