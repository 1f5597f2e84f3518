// Package scope composes the tenant-scoped resource bindings performed for
// each request. Every resource kind (database connection, cache keyspace,
// object storage prefix) is modeled as a Scope with its own bind/release
// pair; Combined stacks them under one scoped-acquisition block.
//
//	scopes := scope.Combined(
//		scope.Database(dbManager),
//		scope.Cache(redisClient),
//		scope.Storage(objectStore),
//	)
//	mw := tenant.Middleware(resolver, provider, tenant.WithBinder(scopes))
//
// Combined binds in declaration order and releases in reverse. If a later
// scope fails to bind, every scope already bound is unwound before the error
// is returned, so a half-bound request can never reach a handler.
package scope
