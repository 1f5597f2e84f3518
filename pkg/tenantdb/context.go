package tenantdb

import "context"

type connCtxKey struct{}

// WithConn returns a context carrying the request's tenant connection handle.
func WithConn(ctx context.Context, conn *Conn) context.Context {
	return context.WithValue(ctx, connCtxKey{}, conn)
}

// ConnFromContext retrieves the tenant connection handle from the context.
func ConnFromContext(ctx context.Context) (*Conn, bool) {
	conn, ok := ctx.Value(connCtxKey{}).(*Conn)
	return conn, ok
}

// MustConnFromContext panics if no tenant connection is bound. Use only in
// handlers mounted strictly behind the tenant middleware with a database
// binder configured.
func MustConnFromContext(ctx context.Context) *Conn {
	conn, ok := ConnFromContext(ctx)
	if !ok || conn == nil {
		panic("tenantdb: no tenant connection in context")
	}
	return conn
}
