package centraldb

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenConnection   = errors.New("failed to open central registry connection")
	ErrEmptyConnectionString    = errors.New("empty central registry connection string, use CENTRAL_DB_URL env var")
	ErrHealthcheckFailed        = errors.New("central registry healthcheck failed")
	ErrFailedToParseConfig      = errors.New("failed to parse central registry config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply registry migrations")
	ErrMigrationsDirNotFound    = errors.New("registry migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("registry migration path not provided")
)

// IsNotFoundError detects pgx.ErrNoRows for consistent "not found" handling
// across registry queries.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError detects unique constraint violations (SQLSTATE 23505),
// e.g. an already-taken tenant slug or contact email.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolationError detects referential integrity violations
// (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
