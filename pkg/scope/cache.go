package scope

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amrshah/tenantengine/pkg/tenant"
)

// DefaultKeyspacePrefix namespaces tenant keyspaces in a shared Redis.
const DefaultKeyspacePrefix = "tenant_engine:"

// Keyspace is a tenant-namespaced view over a shared Redis. Keys written
// through a Keyspace can never collide with another tenant's keys because
// every key carries the tenant prefix.
type Keyspace struct {
	client redis.UniversalClient
	prefix string
}

// Prefix returns the namespace prefix, e.g. "tenant_engine:acme:".
func (k *Keyspace) Prefix() string {
	return k.prefix
}

// Key builds a fully-qualified key inside the tenant namespace.
func (k *Keyspace) Key(name string) string {
	return k.prefix + name
}

func (k *Keyspace) Get(ctx context.Context, name string) (string, error) {
	return k.client.Get(ctx, k.Key(name)).Result()
}

func (k *Keyspace) Set(ctx context.Context, name string, value any, ttl time.Duration) error {
	return k.client.Set(ctx, k.Key(name), value, ttl).Err()
}

func (k *Keyspace) Delete(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = k.Key(n)
	}
	return k.client.Del(ctx, keys...).Err()
}

// Flush removes every key in the tenant namespace. Used when a tenant is
// deleted. Iterates with SCAN so it never blocks Redis on large keyspaces.
func (k *Keyspace) Flush(ctx context.Context) error {
	iter := k.client.Scan(ctx, 0, k.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := k.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

type keyspaceCtxKey struct{}

// WithKeyspace returns a context carrying the tenant's cache keyspace.
func WithKeyspace(ctx context.Context, k *Keyspace) context.Context {
	return context.WithValue(ctx, keyspaceCtxKey{}, k)
}

// KeyspaceFromContext retrieves the tenant cache keyspace from the context.
func KeyspaceFromContext(ctx context.Context) (*Keyspace, bool) {
	k, ok := ctx.Value(keyspaceCtxKey{}).(*Keyspace)
	return k, ok
}

type cacheScope struct {
	client redis.UniversalClient
	prefix string
}

// CacheOption configures the cache scope.
type CacheOption func(*cacheScope)

// WithKeyspacePrefix overrides the shared prefix in front of the tenant slug.
func WithKeyspacePrefix(prefix string) CacheOption {
	return func(s *cacheScope) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// Cache returns a Scope that binds a tenant-namespaced Redis keyspace into
// the request context. Nothing is pooled per request, so release is a no-op;
// isolation comes from the key prefix alone.
func Cache(client redis.UniversalClient, opts ...CacheOption) Scope {
	s := &cacheScope{client: client, prefix: DefaultKeyspacePrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewKeyspace builds the keyspace for a slug outside of request flow, e.g.
// for admin-side teardown.
func NewKeyspace(client redis.UniversalClient, prefix, slug string) *Keyspace {
	if prefix == "" {
		prefix = DefaultKeyspacePrefix
	}
	return &Keyspace{client: client, prefix: prefix + slug + ":"}
}

func (s *cacheScope) Bind(ctx context.Context, t *tenant.Tenant) (context.Context, tenant.ReleaseFunc, error) {
	ks := &Keyspace{client: s.client, prefix: s.prefix + t.Slug + ":"}
	return WithKeyspace(ctx, ks), func() {}, nil
}
