// Package tenant resolves the tenant addressed by an HTTP request and
// establishes a tenant-scoped execution context for the rest of request
// handling.
//
// The package is built around four concepts:
//
//  1. Resolvers extract a tenant slug from the request (path segment,
//     subdomain, header, or a composite of those).
//  2. Providers load the full tenant record from the central registry.
//  3. Binders attach tenant-scoped resources (database connection, cache
//     keyspace) to the request context and hand back a release function.
//  4. Middleware orchestrates resolution, caching, access checks, and
//     guaranteed teardown.
//
// # Usage
//
//	resolver := tenant.NewPathResolver(1)
//	mw := tenant.Middleware(resolver, registryStore,
//		tenant.WithBinder(scopes),
//		tenant.WithCacheTTL(5*time.Minute),
//	)
//	router.Use(mw)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		t := tenant.MustFromContext(r.Context())
//		// ...
//	}
//
// # Access checks
//
// Before any tenant-scoped resource is bound, the middleware enforces three
// checks in a fixed order: the tenant must exist, its lifecycle status must
// be active, and an expired trial without a paid subscription is rejected.
// The ordering matters because each check maps to a distinct HTTP signal
// (404, 403, 402) and an earlier failure must not be masked by a later one.
//
// # Teardown
//
// Resources bound for a request are released on every exit path, including
// handler panics. A rejected request never reaches the bind step, so there
// is nothing to release for it.
//
// Lifecycle rejections (not found, suspended, cancelled, subscription
// required) are expected outcomes and are never logged as errors.
// Infrastructure failures (registry unreachable, pool exhausted) are logged
// and surfaced as a generic temporarily-unavailable response so they cannot
// be confused with tenant lifecycle state.
package tenant
