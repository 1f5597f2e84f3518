// Package storage provides tenant-isolated object storage on Amazon S3 and
// S3-compatible services.
//
// All tenants share one bucket; isolation comes from a deterministic key
// prefix derived from the tenant slug ("tenants/<slug>/"). A TenantStore is
// a view of the bucket restricted to one tenant's prefix. Code holding a
// TenantStore cannot address another tenant's objects.
//
//	store, err := storage.New(ctx, cfg)
//	ts := store.ForTenant("acme")
//	err = ts.Put(ctx, "logo.png", file, "image/png")
//
// Purge removes every object under a tenant's prefix and is used during
// tenant teardown.
package storage
