package scope

import (
	"context"

	"github.com/amrshah/tenantengine/pkg/storage"
	"github.com/amrshah/tenantengine/pkg/tenant"
)

type storageScope struct {
	store *storage.Storage
}

// Storage returns a Scope that binds the tenant's object store view into the
// request context. Isolation comes from the key prefix, so release is a
// no-op.
func Storage(store *storage.Storage) Scope {
	return &storageScope{store: store}
}

func (s *storageScope) Bind(ctx context.Context, t *tenant.Tenant) (context.Context, tenant.ReleaseFunc, error) {
	return storage.WithStore(ctx, s.store.ForTenant(t.Slug)), func() {}, nil
}
