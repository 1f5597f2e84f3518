package centraldb

import "time"

type Config struct {
	ConnectionString  string        `env:"CENTRAL_DB_URL,required"`                     // ConnectionString points at the central registry database.
	MaxOpenConns      int32         `env:"CENTRAL_DB_MAX_OPEN_CONNS" envDefault:"10"`   // MaxOpenConns caps the shared registry pool.
	MaxIdleConns      int32         `env:"CENTRAL_DB_MAX_IDLE_CONNS" envDefault:"5"`    // MaxIdleConns keeps idle connections warm.
	HealthCheckPeriod time.Duration `env:"CENTRAL_DB_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"CENTRAL_DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"CENTRAL_DB_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"CENTRAL_DB_RETRY_ATTEMPTS" envDefault:"3"` // RetryAttempts bounds startup connection retries.
	RetryInterval time.Duration `env:"CENTRAL_DB_RETRY_INTERVAL" envDefault:"5s"`

	MigrationsPath  string `env:"CENTRAL_DB_MIGRATIONS_PATH" envDefault:"pkg/registry/migrations"` // MigrationsPath is the goose migrations directory for the registry schema.
	MigrationsTable string `env:"CENTRAL_DB_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
