// Package tenantdb manages per-tenant PostgreSQL connection pools and the
// request-scoped connection handles bound by the tenant middleware.
//
// Every tenant owns a dedicated database whose name is derived
// deterministically from the tenant slug (prefix + slug). The Manager keeps
// one lazily-created pgx pool per namespace and hands out exclusively-owned
// connection handles for the duration of a request. Handles are released
// back to their pool exactly once, no matter how the request ends.
//
//	manager, err := tenantdb.NewManager(cfg)
//	// ...
//	mw := tenant.Middleware(resolver, provider, tenant.WithBinder(manager))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		conn := tenantdb.MustConnFromContext(r.Context())
//		rows, err := conn.Query(r.Context(), "SELECT ...")
//		// ...
//	}
//
// Pool acquisition is bounded by an acquire timeout and honors request
// cancellation: an acquisition abandoned mid-flight returns its connection
// to the pool instead of leaking it. Exhaustion surfaces as
// tenant.ErrPoolExhausted so the boundary layer can answer with a retriable
// 503 rather than a tenant lifecycle error.
package tenantdb
