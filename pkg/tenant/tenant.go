package tenant

import (
	"context"
	"time"
)

// Status is the lifecycle state of a tenant. It governs whether
// tenant-scoped requests are permitted.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// Tenant is a row from the central registry. The slug doubles as the primary
// key and the connection-namespace key, so it is immutable once a store has
// been provisioned for the tenant. ExternalID is the opaque identifier
// exposed through public APIs.
type Tenant struct {
	Slug               string         `json:"slug"`
	ExternalID         string         `json:"external_id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone,omitempty"`
	Plan               string         `json:"plan"`
	Status             Status         `json:"status"`
	TrialEndsAt        *time.Time     `json:"trial_ends_at,omitempty"`
	SubscriptionEndsAt *time.Time     `json:"subscription_ends_at,omitempty"`
	Settings           map[string]any `json:"settings,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IsActive reports whether tenant-scoped requests are permitted.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

func (t *Tenant) IsSuspended() bool {
	return t.Status == StatusSuspended
}

func (t *Tenant) IsCancelled() bool {
	return t.Status == StatusCancelled
}

// OnTrialAt reports whether the tenant's trial window is still open at the
// given time. Tenants without a trial window are never on trial.
func (t *Tenant) OnTrialAt(now time.Time) bool {
	return t.TrialEndsAt != nil && now.Before(*t.TrialEndsAt)
}

// TrialExpiredAt reports whether a trial window existed and has closed.
func (t *Tenant) TrialExpiredAt(now time.Time) bool {
	return t.TrialEndsAt != nil && now.After(*t.TrialEndsAt)
}

// HasActiveSubscriptionAt reports whether a paid subscription covers the
// given time. A paid subscription grants access regardless of trial state.
func (t *Tenant) HasActiveSubscriptionAt(now time.Time) bool {
	return t.SubscriptionEndsAt != nil && now.Before(*t.SubscriptionEndsAt)
}

// Provider loads tenant records from the central registry.
type Provider interface {
	// GetBySlug returns the tenant for the given slug. Soft-deleted tenants
	// are treated as missing. Returns ErrTenantNotFound when no matching row
	// exists; any other error indicates the registry itself failed.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
}

// ReleaseFunc tears down resources bound for a request. Implementations
// must tolerate being called more than once.
type ReleaseFunc func()

// Binder attaches tenant-scoped resources to the request context. The
// returned context carries the bound resources; the release function returns
// them and must be called exactly when the request finishes, on every exit
// path. Binding must never mutate shared state: concurrent requests for
// different tenants observe only their own binding.
type Binder interface {
	Bind(ctx context.Context, t *Tenant) (context.Context, ReleaseFunc, error)
}
