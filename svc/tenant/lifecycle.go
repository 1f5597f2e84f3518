package tenant

import (
	"errors"
	"fmt"

	"github.com/amrshah/tenantengine/pkg/tenant"
)

// ErrInvalidTransition indicates a lifecycle change the state model forbids.
var ErrInvalidTransition = errors.New("invalid tenant status transition")

// transitions is the tenant lifecycle state model. Cancelled is terminal.
var transitions = map[tenant.Status][]tenant.Status{
	tenant.StatusActive:    {tenant.StatusSuspended, tenant.StatusCancelled},
	tenant.StatusSuspended: {tenant.StatusActive, tenant.StatusCancelled},
	tenant.StatusCancelled: {},
}

// CanTransition reports whether the lifecycle allows moving from one
// status to another.
func CanTransition(from, to tenant.Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionError carries the rejected transition endpoints.
type TransitionError struct {
	From tenant.Status
	To   tenant.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition tenant from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// CheckTransition validates a lifecycle change, returning a TransitionError
// wrapping ErrInvalidTransition when the state model forbids it.
func CheckTransition(from, to tenant.Status) error {
	if from == to {
		return &TransitionError{From: from, To: to}
	}
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
