package tenant

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Middleware resolves the tenant addressed by the request, enforces the
// access checks, binds tenant-scoped resources, and guarantees teardown.
//
// Per-request flow: resolve identifier -> load record (cache, then registry)
// -> authorize -> bind -> handler -> release. A rejection short-circuits
// straight to the error handler without ever reaching the bind step.
// Requests that carry no tenant identifier pass through untouched so central
// routes can share the router.
func Middleware(resolver Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		cache:        NewMemoryCache(),
		cacheTTL:     DefaultCacheTTL,
		errorHandler: DefaultErrorHandler,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolver(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if identifier == "" {
				// Not a tenant-scoped request.
				next.ServeHTTP(w, r)
				return
			}

			t, cached := cfg.cache.Get(r.Context(), identifier)
			if !cached {
				t, err = provider.GetBySlug(r.Context(), identifier)
				if err != nil {
					if errors.Is(err, ErrTenantNotFound) {
						cfg.errorHandler(w, r, ErrTenantNotFound)
						return
					}
					// Registry failure is an operational problem, never a
					// statement about the tenant.
					if cfg.logger != nil {
						cfg.logger.ErrorContext(r.Context(), "tenant registry lookup failed",
							"slug", identifier, "error", err)
					}
					cfg.errorHandler(w, r, errors.Join(ErrRegistryUnreachable, err))
					return
				}
				cfg.cache.Set(r.Context(), identifier, t, cfg.cacheTTL)
			}

			// Lifecycle rejections are expected outcomes: no logging.
			if err := AuthorizeAt(t, cfg.now()); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			ctx := WithTenant(r.Context(), t)

			if cfg.binder != nil {
				boundCtx, release, err := cfg.binder.Bind(ctx, t)
				if err != nil {
					if cfg.logger != nil {
						cfg.logger.ErrorContext(r.Context(), "tenant resource binding failed",
							"slug", t.Slug, "error", err)
					}
					cfg.errorHandler(w, r, err)
					return
				}
				// Deferred so the binding is released even if the handler
				// panics. ReleaseFunc is idempotent per contract.
				defer release()
				ctx = boundCtx
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant ensures a tenant is present in the context. Mount it on
// route groups that must never run without tenant scope.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t, ok := FromContext(r.Context()); !ok || t == nil {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
