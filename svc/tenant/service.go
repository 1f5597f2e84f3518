// Package tenant implements tenant lifecycle administration: provisioning,
// updates, status transitions, and teardown. It sits on top of the central
// registry and keeps the resolver cache coherent: every mutation
// invalidates the affected slug so running instances pick up lifecycle
// changes immediately instead of waiting out the cache TTL.
package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amrshah/tenantengine/pkg/plan"
	"github.com/amrshah/tenantengine/pkg/registry"
	"github.com/amrshah/tenantengine/pkg/slug"
	"github.com/amrshah/tenantengine/pkg/storage"
	"github.com/amrshah/tenantengine/pkg/tenant"
)

// externalIDPrefix marks tenant identifiers exposed through public APIs.
const externalIDPrefix = "TNT"

// Store is the registry surface the service needs. *registry.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
	Create(ctx context.Context, t *tenant.Tenant) error
	Update(ctx context.Context, slug string, params registry.UpdateParams) (*tenant.Tenant, error)
	UpdateStatus(ctx context.Context, slug string, status tenant.Status) (*tenant.Tenant, error)
	SoftDelete(ctx context.Context, slug string) error
	List(ctx context.Context, f registry.Filter) ([]*tenant.Tenant, int, error)
}

// PoolCloser shuts down a tenant's connection pool. Satisfied by
// *tenantdb.Manager.
type PoolCloser interface {
	CloseTenant(slug string)
}

// Service orchestrates tenant administration.
type Service struct {
	store   Store
	cache   tenant.Cache
	plans   *plan.Catalog
	pools   PoolCloser
	objects *storage.Storage
	log     *slog.Logger
	now     func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithCache wires the resolver cache so mutations invalidate stale entries.
func WithCache(cache tenant.Cache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithPlanCatalog enables plan validation and trial derivation on create.
func WithPlanCatalog(c *plan.Catalog) ServiceOption {
	return func(s *Service) { s.plans = c }
}

// WithPoolCloser wires the tenant pool manager so deleted tenants lose
// their open connections.
func WithPoolCloser(p PoolCloser) ServiceOption {
	return func(s *Service) { s.pools = p }
}

// WithObjectStorage enables purging a tenant's objects on delete.
func WithObjectStorage(store *storage.Storage) ServiceOption {
	return func(s *Service) { s.objects = store }
}

func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source. Tests use this to pin trial windows.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a tenant administration service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		cache: tenant.NewNoopCache(),
		log:   slog.New(slog.DiscardHandler),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams describes a new tenant. Slug and Plan are optional: the slug
// is derived from the name when absent, the plan falls back to the catalog
// default. TrialDays overrides the plan's trial window when set.
type CreateParams struct {
	Name      string
	Email     string
	Phone     string
	Slug      string
	Plan      string
	TrialDays *int
}

// Create registers a new tenant in the central registry. The slug is
// validated against shape rules and the reserved list before it becomes the
// permanent store namespace key.
func (s *Service) Create(ctx context.Context, params CreateParams) (*tenant.Tenant, error) {
	id := params.Slug
	if id == "" {
		id = slug.Make(params.Name)
	}
	if err := slug.Validate(id); err != nil {
		return nil, err
	}

	now := s.now()

	planID := params.Plan
	var trialEndsAt *time.Time
	if s.plans != nil {
		if planID == "" {
			planID = s.plans.Default().ID
		}
		p, err := s.plans.Get(planID)
		if err != nil {
			return nil, err
		}
		trialEndsAt = p.TrialEndsAt(now)
	} else if planID == "" {
		planID = "free"
	}

	if params.TrialDays != nil {
		if *params.TrialDays > 0 {
			ends := now.AddDate(0, 0, *params.TrialDays)
			trialEndsAt = &ends
		} else {
			trialEndsAt = nil
		}
	}

	t := &tenant.Tenant{
		Slug:        id,
		ExternalID:  newExternalID(),
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		Plan:        planID,
		Status:      tenant.StatusActive,
		TrialEndsAt: trialEndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant created",
		"tenant", t.Slug, "external_id", t.ExternalID, "plan", t.Plan)

	return t, nil
}

// UpdateParams carries optional admin updates; nil fields are untouched.
type UpdateParams struct {
	Name     *string
	Email    *string
	Phone    *string
	Plan     *string
	Settings map[string]any
}

// Update applies admin changes and invalidates the resolver cache.
func (s *Service) Update(ctx context.Context, slugID string, params UpdateParams) (*tenant.Tenant, error) {
	if params.Plan != nil && s.plans != nil {
		if _, err := s.plans.Get(*params.Plan); err != nil {
			return nil, err
		}
	}

	t, err := s.store.Update(ctx, slugID, registry.UpdateParams{
		Name:     params.Name,
		Email:    params.Email,
		Phone:    params.Phone,
		Plan:     params.Plan,
		Settings: params.Settings,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, slugID)
	s.log.InfoContext(ctx, "tenant updated", "tenant", slugID)

	return t, nil
}

// Get returns a tenant by slug.
func (s *Service) Get(ctx context.Context, slugID string) (*tenant.Tenant, error) {
	return s.store.GetBySlug(ctx, slugID)
}

// List returns tenants matching the filter plus the total match count.
func (s *Service) List(ctx context.Context, f registry.Filter) ([]*tenant.Tenant, int, error) {
	return s.store.List(ctx, f)
}

// Suspend blocks tenant-scoped access until the tenant is activated again.
func (s *Service) Suspend(ctx context.Context, slugID, reason string) (*tenant.Tenant, error) {
	t, err := s.transition(ctx, slugID, tenant.StatusSuspended)
	if err != nil {
		return nil, err
	}
	s.log.WarnContext(ctx, "tenant suspended", "tenant", slugID, "reason", reason)
	return t, nil
}

// Activate restores access for a suspended tenant.
func (s *Service) Activate(ctx context.Context, slugID string) (*tenant.Tenant, error) {
	t, err := s.transition(ctx, slugID, tenant.StatusActive)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "tenant activated", "tenant", slugID)
	return t, nil
}

// Cancel terminally ends the tenant. Cancelled tenants cannot be
// reactivated through lifecycle transitions.
func (s *Service) Cancel(ctx context.Context, slugID, reason string) (*tenant.Tenant, error) {
	t, err := s.transition(ctx, slugID, tenant.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.log.WarnContext(ctx, "tenant cancelled", "tenant", slugID, "reason", reason)
	return t, nil
}

func (s *Service) transition(ctx context.Context, slugID string, target tenant.Status) (*tenant.Tenant, error) {
	current, err := s.store.GetBySlug(ctx, slugID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(current.Status, target); err != nil {
		return nil, err
	}

	t, err := s.store.UpdateStatus(ctx, slugID, target)
	if err != nil {
		return nil, err
	}

	// Invalidate after the write so no request can re-cache the old status.
	s.cache.Delete(ctx, slugID)

	return t, nil
}

// Delete soft-deletes the tenant, closes its connection pool, and
// optionally purges its object storage. The registry row survives so the
// store reference remains available for audit and recovery.
func (s *Service) Delete(ctx context.Context, slugID string, purgeStorage bool) error {
	if err := s.store.SoftDelete(ctx, slugID); err != nil {
		return err
	}

	s.cache.Delete(ctx, slugID)
	if s.pools != nil {
		s.pools.CloseTenant(slugID)
	}

	if purgeStorage && s.objects != nil {
		if err := s.objects.ForTenant(slugID).Purge(ctx); err != nil {
			// The tenant is already gone from resolution; storage leftovers
			// are an operational cleanup task, not a failed delete.
			s.log.ErrorContext(ctx, "tenant storage purge failed", "tenant", slugID, "error", err)
		}
	}

	s.log.WarnContext(ctx, "tenant deleted", "tenant", slugID, "storage_purged", purgeStorage)

	return nil
}

// Stats summarizes a tenant's lifecycle and billing position.
type Stats struct {
	OnTrial               bool `json:"is_on_trial"`
	TrialEnded            bool `json:"trial_has_ended"`
	HasActiveSubscription bool `json:"has_active_subscription"`
	Active                bool `json:"is_active"`
	Suspended             bool `json:"is_suspended"`
	Cancelled             bool `json:"is_cancelled"`
	DaysUntilTrialEnds    *int `json:"days_until_trial_ends"`
}

// StatsFor computes lifecycle statistics for a tenant record.
func (s *Service) StatsFor(t *tenant.Tenant) Stats {
	now := s.now()
	st := Stats{
		OnTrial:               t.OnTrialAt(now),
		TrialEnded:            t.TrialExpiredAt(now),
		HasActiveSubscription: t.HasActiveSubscriptionAt(now),
		Active:                t.IsActive(),
		Suspended:             t.IsSuspended(),
		Cancelled:             t.IsCancelled(),
	}
	if t.TrialEndsAt != nil {
		days := int(t.TrialEndsAt.Sub(now).Hours() / 24)
		st.DaysUntilTrialEnds = &days
	}
	return st
}

func newExternalID() string {
	return fmt.Sprintf("%s_%s", externalIDPrefix,
		strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:14])
}
