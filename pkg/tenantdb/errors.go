package tenantdb

import "errors"

var (
	ErrEmptyDSN         = errors.New("empty tenant database DSN, use TENANT_DB_URL env var")
	ErrInvalidDSN       = errors.New("failed to parse tenant database DSN")
	ErrManagerClosed    = errors.New("tenant pool manager is closed")
	ErrInvalidNamespace = errors.New("invalid tenant namespace")
	ErrNoConnInContext  = errors.New("no tenant connection in context")
)
