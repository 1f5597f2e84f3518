package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DefaultCacheTTL bounds how stale a resolved tenant record may get. A
// lifecycle change is guaranteed to take effect within one TTL even when the
// cache key is not explicitly invalidated.
const DefaultCacheTTL = 5 * time.Minute

// ErrorHandler renders resolution and access failures to the client.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	cache        Cache
	cacheTTL     time.Duration
	errorHandler ErrorHandler
	skipPaths    []string
	binder       Binder
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the middleware.
type Option func(*config)

// WithCache sets a custom cache implementation.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithCacheTTL sets how long resolved tenants may be served from cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithBinder sets the binder that attaches tenant-scoped resources
// (database connection, cache keyspace) to the request context.
func WithBinder(b Binder) Option {
	return func(c *config) {
		c.binder = b
	}
}

// WithLogger sets the logger used for infrastructure failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock overrides the time source for access checks. Tests use this to
// pin trial and subscription windows.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// apiError is the structured error envelope written by the default handler.
type apiError struct {
	Status string         `json:"status"`
	Code   string         `json:"code"`
	Title  string         `json:"title"`
	Detail string         `json:"detail"`
	Meta   map[string]any `json:"meta,omitempty"`
}

func writeAPIError(w http.ResponseWriter, statusCode int, e apiError) {
	e.Status = strconv.Itoa(statusCode)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": []apiError{e}})
}

// DefaultErrorHandler maps the error taxonomy to HTTP responses: 404 for
// missing tenants, 403 for suspended/cancelled, 402 for expired trials
// without a subscription, 503 for infrastructure failures. Infrastructure
// detail is never leaked to the client.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var accessErr *AccessError
	if !errors.As(err, &accessErr) {
		accessErr = nil
	}

	switch {
	case errors.Is(err, ErrTenantNotFound):
		writeAPIError(w, http.StatusNotFound, apiError{
			Code:   "TENANT_NOT_FOUND",
			Title:  "Tenant Not Found",
			Detail: "The requested tenant does not exist",
		})
	case errors.Is(err, ErrTenantSuspended):
		writeAPIError(w, http.StatusForbidden, unavailableError(accessErr,
			"This tenant has been suspended. Please contact support."))
	case errors.Is(err, ErrTenantCancelled):
		writeAPIError(w, http.StatusForbidden, unavailableError(accessErr,
			"This tenant has been cancelled."))
	case errors.Is(err, ErrTenantUnavailable):
		writeAPIError(w, http.StatusForbidden, unavailableError(accessErr,
			"This tenant is not available."))
	case errors.Is(err, ErrSubscriptionRequired):
		e := apiError{
			Code:   "SUBSCRIPTION_REQUIRED",
			Title:  "Subscription Required",
			Detail: "Your trial has ended. Please subscribe to continue.",
		}
		if accessErr != nil && accessErr.TrialEndsAt != nil {
			e.Meta = map[string]any{"trial_ended_at": accessErr.TrialEndsAt.Format(time.RFC3339)}
		}
		writeAPIError(w, http.StatusPaymentRequired, e)
	case errors.Is(err, ErrInvalidIdentifier):
		writeAPIError(w, http.StatusBadRequest, apiError{
			Code:   "INVALID_TENANT_IDENTIFIER",
			Title:  "Invalid Tenant Identifier",
			Detail: "The tenant identifier is malformed",
		})
	case errors.Is(err, ErrNoTenantInContext):
		writeAPIError(w, http.StatusNotFound, apiError{
			Code:   "TENANT_NOT_FOUND",
			Title:  "Tenant Not Found",
			Detail: "This route requires a tenant context",
		})
	case errors.Is(err, ErrPoolExhausted), errors.Is(err, ErrRegistryUnreachable), errors.Is(err, ErrStoreUnreachable):
		writeAPIError(w, http.StatusServiceUnavailable, apiError{
			Code:   "SERVICE_UNAVAILABLE",
			Title:  "Service Unavailable",
			Detail: "The service is temporarily unavailable. Please retry shortly.",
		})
	default:
		writeAPIError(w, http.StatusInternalServerError, apiError{
			Code:   "INTERNAL_ERROR",
			Title:  "Internal Server Error",
			Detail: "An unexpected error occurred",
		})
	}
}

func unavailableError(accessErr *AccessError, detail string) apiError {
	e := apiError{
		Code:   "TENANT_UNAVAILABLE",
		Title:  "Tenant Unavailable",
		Detail: detail,
	}
	if accessErr != nil {
		e.Meta = map[string]any{"tenant_status": string(accessErr.Status)}
	}
	return e
}
