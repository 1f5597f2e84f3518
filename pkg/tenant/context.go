package tenant

import (
	"context"
	"log/slog"
)

// contextKey prevents collisions with other packages using context values.
type contextKey struct{}

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant from the context.
// Returns nil, false if no tenant is present.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok
}

// SlugFromContext provides fast access to the tenant slug without exposing
// the full record.
func SlugFromContext(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		return "", false
	}
	return t.Slug, true
}

// MustFromContext panics if no tenant is present. Use only in handlers that
// are mounted strictly behind the tenant middleware.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor returns a logger context extractor that enriches log
// records with the tenant slug.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if slug, ok := SlugFromContext(ctx); ok {
			return slog.String("tenant", slug), true
		}
		return slog.Attr{}, false
	}
}
