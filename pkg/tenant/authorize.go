package tenant

import "time"

// Authorize checks whether tenant-scoped requests are permitted right now.
// See AuthorizeAt for the check order.
func Authorize(t *Tenant) error {
	return AuthorizeAt(t, time.Now().UTC())
}

// AuthorizeAt enforces the access checks in a fixed order: existence, then
// lifecycle status, then billing. Each check maps to a distinct HTTP-level
// signal, so an earlier failure must not be masked by a later check.
//
// Returns nil when access is granted, ErrTenantNotFound for a nil tenant,
// and an *AccessError wrapping the matching sentinel otherwise.
func AuthorizeAt(t *Tenant, now time.Time) error {
	if t == nil {
		return ErrTenantNotFound
	}

	if t.Status != StatusActive {
		reason := ErrTenantUnavailable
		switch t.Status {
		case StatusSuspended:
			reason = ErrTenantSuspended
		case StatusCancelled:
			reason = ErrTenantCancelled
		}
		return &AccessError{Reason: reason, Status: t.Status}
	}

	// A paid subscription grants access regardless of trial state.
	if t.TrialExpiredAt(now) && !t.HasActiveSubscriptionAt(now) {
		return &AccessError{
			Reason:      ErrSubscriptionRequired,
			Status:      t.Status,
			TrialEndsAt: t.TrialEndsAt,
		}
	}

	return nil
}
