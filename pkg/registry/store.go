package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amrshah/tenantengine/pkg/centraldb"
	"github.com/amrshah/tenantengine/pkg/tenant"
)

var (
	// ErrDuplicateTenant is returned when a slug or contact email is taken.
	ErrDuplicateTenant = errors.New("tenant already exists")
)

const tenantColumns = `id, external_id, name, email, phone, plan, status,
	trial_ends_at, subscription_ends_at, settings, created_at, updated_at`

// Store reads and writes tenant records in the central registry.
// Safe for concurrent use; all mutations are single-statement and atomic.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps the central registry pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetBySlug implements tenant.Provider. Soft-deleted rows are invisible.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tenantColumns+`
		FROM tenants WHERE id = $1 AND deleted_at IS NULL`, slug)
	return scanTenant(row)
}

// GetByExternalID resolves a tenant by its public opaque identifier.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tenantColumns+`
		FROM tenants WHERE external_id = $1 AND deleted_at IS NULL`, externalID)
	return scanTenant(row)
}

// Create inserts a new tenant record. The slug becomes the primary key and
// must never change afterwards: it addresses the tenant's provisioned store.
func (s *Store) Create(ctx context.Context, t *tenant.Tenant) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO tenants
		(id, external_id, name, email, phone, plan, status, trial_ends_at, subscription_ends_at, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`,
		t.Slug, t.ExternalID, t.Name, t.Email, nullable(t.Phone), t.Plan, string(t.Status),
		t.TrialEndsAt, t.SubscriptionEndsAt, t.Settings)
	if err != nil {
		if centraldb.IsDuplicateKeyError(err) {
			return errors.Join(ErrDuplicateTenant, err)
		}
		return fmt.Errorf("registry: create tenant: %w", err)
	}
	return nil
}

// UpdateParams carries optional admin updates. Nil fields are untouched.
// The slug is deliberately absent: it is immutable.
type UpdateParams struct {
	Name     *string
	Email    *string
	Phone    *string
	Plan     *string
	Settings map[string]any
}

// Update applies the non-nil fields and returns the updated record.
func (s *Store) Update(ctx context.Context, slug string, params UpdateParams) (*tenant.Tenant, error) {
	sets := []string{"updated_at = now()"}
	args := []any{slug}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.Plan != nil {
		add("plan", *params.Plan)
	}
	if params.Settings != nil {
		add("settings", params.Settings)
	}

	row := s.pool.QueryRow(ctx, `UPDATE tenants SET `+strings.Join(sets, ", ")+`
		WHERE id = $1 AND deleted_at IS NULL RETURNING `+tenantColumns, args...)
	t, err := scanTenant(row)
	if err != nil && centraldb.IsDuplicateKeyError(err) {
		return nil, errors.Join(ErrDuplicateTenant, err)
	}
	return t, err
}

// UpdateStatus transitions the lifecycle state in one atomic statement and
// returns the updated record. Transition validity is the caller's concern.
func (s *Store) UpdateStatus(ctx context.Context, slug string, status tenant.Status) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx, `UPDATE tenants SET status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL RETURNING `+tenantColumns, slug, string(status))
	return scanTenant(row)
}

// SetSubscriptionEnds records the paid-subscription horizon, clearing it
// when until is nil.
func (s *Store) SetSubscriptionEnds(ctx context.Context, slug string, until *time.Time) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx, `UPDATE tenants SET subscription_ends_at = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL RETURNING `+tenantColumns, slug, until)
	return scanTenant(row)
}

// SoftDelete hides the tenant from resolution while preserving the row, so
// the provisioned store reference survives for audit and recovery.
func (s *Store) SoftDelete(ctx context.Context, slug string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE tenants SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, slug)
	if err != nil {
		return fmt.Errorf("registry: delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Status tenant.Status
	Plan   string
	Search string // matches name, email, or slug, case-insensitive
	Limit  int
	Offset int
}

// List returns matching tenants ordered by creation time (newest first)
// along with the total match count for pagination.
func (s *Store) List(ctx context.Context, f Filter) ([]*tenant.Tenant, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.Plan != "" {
		where = append(where, "plan = "+arg(f.Plan))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s OR id ILIKE %s)", p, p, p))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM tenants WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("registry: count tenants: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 15
	}
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		tenantColumns, cond, arg(limit), arg(f.Offset))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("registry: list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, t)
	}
	return tenants, total, rows.Err()
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var (
		t      tenant.Tenant
		status string
		phone  *string
	)
	err := row.Scan(&t.Slug, &t.ExternalID, &t.Name, &t.Email, &phone, &t.Plan, &status,
		&t.TrialEndsAt, &t.SubscriptionEndsAt, &t.Settings, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if centraldb.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("registry: scan tenant: %w", err)
	}
	if phone != nil {
		t.Phone = *phone
	}
	t.Status = tenant.Status(status)
	return &t, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
