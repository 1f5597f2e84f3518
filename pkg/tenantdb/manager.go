package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amrshah/tenantengine/pkg/tenant"
)

// Manager maintains one connection pool per tenant namespace. Pools are
// created lazily on first acquisition and live until Close. Manager
// implements tenant.Binder, so it can be plugged straight into the tenant
// middleware.
type Manager struct {
	cfg    Config
	base   *pgxpool.Config
	logger *slog.Logger

	mu     sync.RWMutex
	pools  map[string]*pgxpool.Pool
	closed bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for pool lifecycle events.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager parses the host DSN once and prepares the pool map. No
// connections are opened until a tenant is first bound.
func NewManager(cfg Config, opts ...ManagerOption) (*Manager, error) {
	if cfg.HostDSN == "" {
		return nil, ErrEmptyDSN
	}

	base, err := pgxpool.ParseConfig(cfg.HostDSN)
	if err != nil {
		return nil, errors.Join(ErrInvalidDSN, err)
	}
	base.MaxConns = cfg.MaxConnsPerTenant
	base.MinConns = cfg.MinConnsPerTenant
	base.MaxConnIdleTime = cfg.MaxConnIdleTime
	base.MaxConnLifetime = cfg.MaxConnLifetime

	m := &Manager{
		cfg:   cfg,
		base:  base,
		pools: make(map[string]*pgxpool.Pool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Namespace derives the database name for a slug using the configured prefix.
func (m *Manager) Namespace(slug string) string {
	return Namespace(m.cfg.NamespacePrefix, slug)
}

// Acquire checks a connection out of the tenant's pool. The wait is bounded
// by the configured acquire timeout; hitting that bound surfaces as
// tenant.ErrPoolExhausted so callers can answer with backpressure instead of
// mistaking it for a tenant lifecycle problem. Cancelling ctx abandons the
// acquisition; pgx returns the eventually-obtained connection to the pool.
func (m *Manager) Acquire(ctx context.Context, slug string) (*Conn, error) {
	ns := m.Namespace(slug)
	if !ValidNamespace(ns) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNamespace, ns)
	}

	pool, err := m.pool(ns)
	if err != nil {
		return nil, err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, m.cfg.AcquireTimeout)
	defer cancel()

	pc, err := pool.Acquire(acquireCtx)
	if err != nil {
		if ctx.Err() != nil {
			// The request itself went away; not a pool problem.
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Join(tenant.ErrPoolExhausted, err)
		}
		return nil, errors.Join(tenant.ErrStoreUnreachable, err)
	}

	return newConn(ns, pc), nil
}

// Bind implements tenant.Binder: it acquires a connection for the tenant and
// installs the handle into the request context. The returned release
// function checks the connection back in and is safe to call repeatedly.
func (m *Manager) Bind(ctx context.Context, t *tenant.Tenant) (context.Context, tenant.ReleaseFunc, error) {
	conn, err := m.Acquire(ctx, t.Slug)
	if err != nil {
		return ctx, nil, err
	}
	return WithConn(ctx, conn), conn.Release, nil
}

// pool returns the pool for a namespace, creating it on first use.
func (m *Manager) pool(ns string) (*pgxpool.Pool, error) {
	m.mu.RLock()
	p, ok := m.pools[ns]
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrManagerClosed
	}
	if ok {
		return p, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	if p, ok := m.pools[ns]; ok {
		return p, nil
	}

	cfg := m.base.Copy()
	cfg.ConnConfig.Database = ns

	// NewWithConfig does not dial; the first Acquire does. A wrong namespace
	// therefore fails at acquisition time with a store-unreachable error.
	p, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, errors.Join(tenant.ErrStoreUnreachable, err)
	}

	if m.logger != nil {
		m.logger.Info("tenant pool created", "namespace", ns)
	}
	m.pools[ns] = p
	return p, nil
}

// CloseTenant shuts down the pool for one namespace, severing open
// connections. Called when a tenant is deleted so its store can be dropped.
func (m *Manager) CloseTenant(slug string) {
	ns := m.Namespace(slug)

	m.mu.Lock()
	p, ok := m.pools[ns]
	delete(m.pools, ns)
	m.mu.Unlock()

	if ok {
		p.Close()
		if m.logger != nil {
			m.logger.Info("tenant pool closed", "namespace", ns)
		}
	}
}

// Close shuts down every tenant pool. Safe for repeated calls.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	pools := m.pools
	m.pools = make(map[string]*pgxpool.Pool)
	m.mu.Unlock()

	for _, p := range pools {
		p.Close()
	}
}
