// Package centraldb connects to the central registry database, the single
// shared PostgreSQL store holding tenant metadata. It must be reachable
// independent of any tenant context, so the connect helper retries with
// backoff at startup and schema migrations run before traffic is served.
//
//	var cfg centraldb.Config
//	_ = config.Load(&cfg)
//
//	pool, err := centraldb.Connect(ctx, cfg)
//	// ...
//	if err := centraldb.Migrate(ctx, pool, cfg, log); err != nil { ... }
//
// The package also carries the pgx error helpers shared by registry queries.
package centraldb
