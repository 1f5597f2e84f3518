package storage

import "context"

type storeCtxKey struct{}

// WithStore returns a context carrying the tenant's object store view.
func WithStore(ctx context.Context, store *TenantStore) context.Context {
	return context.WithValue(ctx, storeCtxKey{}, store)
}

// StoreFromContext retrieves the tenant object store from the context.
func StoreFromContext(ctx context.Context) (*TenantStore, bool) {
	store, ok := ctx.Value(storeCtxKey{}).(*TenantStore)
	return store, ok
}
