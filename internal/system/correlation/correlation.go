// Package correlation carries the request correlation id through contexts.
package correlation

import "context"

// HeaderName is the header used to propagate the correlation id
const HeaderName = "X-Correlation-ID"

// GinKey is the gin context key under which the id is stored
const GinKey = "correlation_id"

type ctxKey struct{}

// WithID returns a copy of ctx carrying id
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation id in ctx, or "" if there is none
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
