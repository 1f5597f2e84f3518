package tenant

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTenantNotFound is returned when no non-deleted tenant matches a slug.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantSuspended is returned for tenants with suspended status.
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrTenantCancelled is returned for tenants with cancelled status.
	ErrTenantCancelled = errors.New("tenant is cancelled")

	// ErrTenantUnavailable is returned for tenants in any other non-active state.
	ErrTenantUnavailable = errors.New("tenant is not available")

	// ErrSubscriptionRequired is returned when the trial has ended and no
	// paid subscription covers the current time.
	ErrSubscriptionRequired = errors.New("active subscription required")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrPoolExhausted indicates the tenant connection pool could not supply
	// a connection in time. Transient: callers may retry after backoff.
	ErrPoolExhausted = errors.New("tenant connection pool exhausted")

	// ErrRegistryUnreachable indicates the central registry lookup itself
	// failed, as opposed to the tenant not existing.
	ErrRegistryUnreachable = errors.New("tenant registry unreachable")

	// ErrStoreUnreachable indicates the tenant's own data store could not be
	// reached while binding a connection.
	ErrStoreUnreachable = errors.New("tenant store unreachable")
)

// AccessError is a typed rejection from the access checks. It wraps one of
// the lifecycle sentinels and carries enough detail for the boundary layer
// to render a precise message without another registry round-trip.
type AccessError struct {
	Reason      error      // one of the sentinel errors above
	Status      Status     // tenant status at rejection time
	TrialEndsAt *time.Time // set for subscription-required rejections
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("tenant access denied: %s (status=%s)", e.Reason, e.Status)
}

func (e *AccessError) Unwrap() error {
	return e.Reason
}
