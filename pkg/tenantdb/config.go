package tenantdb

import "time"

type Config struct {
	// HostDSN points at the database server hosting tenant databases. The
	// database name in the DSN is replaced per tenant with prefix + slug.
	HostDSN string `env:"TENANT_DB_URL,required"`

	NamespacePrefix string `env:"TENANT_DB_PREFIX" envDefault:"tenant_"` // NamespacePrefix is prepended to the slug to form the database name.

	MaxConnsPerTenant int32         `env:"TENANT_DB_MAX_CONNS" envDefault:"4"`          // MaxConnsPerTenant caps each tenant pool.
	MinConnsPerTenant int32         `env:"TENANT_DB_MIN_CONNS" envDefault:"0"`          // MinConnsPerTenant keeps idle connections warm per tenant.
	MaxConnIdleTime   time.Duration `env:"TENANT_DB_MAX_CONN_IDLE_TIME" envDefault:"5m"` // MaxConnIdleTime is how long an idle connection may be reused.
	MaxConnLifetime   time.Duration `env:"TENANT_DB_MAX_CONN_LIFETIME" envDefault:"30m"` // MaxConnLifetime bounds the age of pooled connections.

	AcquireTimeout time.Duration `env:"TENANT_DB_ACQUIRE_TIMEOUT" envDefault:"5s"` // AcquireTimeout bounds how long a request may wait for a connection.
}
