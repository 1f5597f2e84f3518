package scope

import (
	"context"
	"sync"

	"github.com/amrshah/tenantengine/pkg/tenant"
)

// Scope is a single tenant-scoped resource binding. It mirrors
// tenant.Binder, so any Scope (including a Combined stack) can be handed to
// the tenant middleware directly.
type Scope interface {
	Bind(ctx context.Context, t *tenant.Tenant) (context.Context, tenant.ReleaseFunc, error)
}

// Func adapts an ordinary function to the Scope interface.
type Func func(ctx context.Context, t *tenant.Tenant) (context.Context, tenant.ReleaseFunc, error)

func (f Func) Bind(ctx context.Context, t *tenant.Tenant) (context.Context, tenant.ReleaseFunc, error) {
	return f(ctx, t)
}

type combined struct {
	scopes []Scope
}

// Combined stacks scopes into one bind/release pair. Binding happens in
// declaration order; release runs in reverse order exactly once, even when
// the returned release function is called repeatedly. A bind failure unwinds
// the scopes bound so far and returns the original context untouched.
func Combined(scopes ...Scope) Scope {
	return &combined{scopes: scopes}
}

func (c *combined) Bind(ctx context.Context, t *tenant.Tenant) (context.Context, tenant.ReleaseFunc, error) {
	releases := make([]tenant.ReleaseFunc, 0, len(c.scopes))

	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	bound := ctx
	for _, s := range c.scopes {
		next, release, err := s.Bind(bound, t)
		if err != nil {
			releaseAll()
			return ctx, nil, err
		}
		bound = next
		if release != nil {
			releases = append(releases, release)
		}
	}

	var once sync.Once
	return bound, func() { once.Do(releaseAll) }, nil
}

// Database wraps a tenant.Binder (typically a tenantdb.Manager) as a Scope
// so it can be composed with the other resource kinds.
func Database(b tenant.Binder) Scope {
	return Func(b.Bind)
}
