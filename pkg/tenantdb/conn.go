package tenantdb

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is a per-request tenant connection handle. It owns one pooled
// connection bound to the tenant's database and is exclusively owned by the
// request that acquired it; it must never be shared across requests.
type Conn struct {
	namespace string
	conn      *pgxpool.Conn
	release   func()
	once      sync.Once
}

func newConn(namespace string, pc *pgxpool.Conn) *Conn {
	return &Conn{
		namespace: namespace,
		conn:      pc,
		release:   pc.Release,
	}
}

// newConnWithRelease exists for tests that need to observe release behavior
// without a live pool.
func newConnWithRelease(namespace string, release func()) *Conn {
	return &Conn{namespace: namespace, release: release}
}

// Namespace returns the database name this handle is bound to.
func (c *Conn) Namespace() string {
	return c.namespace
}

// Release returns the connection to its pool. Safe for repeated calls; only
// the first call has an effect.
func (c *Conn) Release() {
	c.once.Do(c.release)
}

// Conn exposes the underlying pooled connection for code that needs pgx
// features not wrapped here (transactions, batches, listen/notify).
func (c *Conn) Conn() *pgxpool.Conn {
	return c.conn
}

func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c *Conn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}
