package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MaxSlugLength keeps identifiers DNS-compatible and bounds lookup keys.
	MaxSlugLength = 63
	MinSlugLength = 1
)

// identifierPattern ensures safe identifiers: alphanumeric start, hyphens allowed.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Resolver extracts a tenant identifier from an HTTP request.
// Returns empty string if the request does not address a tenant,
// and an error if an identifier is present but malformed.
type Resolver func(r *http.Request) (string, error)

func isValidIdentifier(id string) bool {
	if len(id) < MinSlugLength || len(id) > MaxSlugLength {
		return false
	}
	return identifierPattern.MatchString(id)
}

// NewPathResolver extracts the tenant slug from a URL path segment at the
// given 1-based position. Position 1 matches the /{tenant}/... layout used
// by path-based tenancy.
func NewPathResolver(position int) Resolver {
	return func(req *http.Request) (string, error) {
		if position < 1 {
			return "", fmt.Errorf("invalid path position: %d", position)
		}

		path := strings.TrimPrefix(req.URL.Path, "/")
		path = strings.TrimSuffix(path, "/")
		if path == "" {
			return "", nil
		}

		parts := strings.Split(path, "/")
		if position > len(parts) {
			return "", nil
		}

		value := strings.TrimSpace(parts[position-1])
		if value == "" {
			return "", nil
		}
		if !isValidIdentifier(value) {
			return "", fmt.Errorf("%w: path segment %q", ErrInvalidIdentifier, value)
		}

		return value, nil
	}
}

// NewSubdomainResolver extracts the tenant slug from the request subdomain,
// optionally stripping a suffix such as ".example.com". Returns empty string
// for the base domain and skips the www prefix.
func NewSubdomainResolver(suffix string) Resolver {
	return func(req *http.Request) (string, error) {
		host := req.Host
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}

		// Need subdomain.domain.tld at minimum to treat the first label as a tenant.
		if len(strings.Split(host, ".")) < 3 {
			return "", nil
		}

		if suffix != "" && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			host = host[:len(host)-len(suffix)]
		}

		parts := strings.Split(host, ".")
		if len(parts) == 0 || parts[0] == "" {
			return "", nil
		}

		sub := parts[0]
		if sub == "www" {
			if len(parts) < 2 {
				return "", nil
			}
			sub = parts[1]
		}

		sub = strings.TrimSpace(sub)
		if sub == "" {
			return "", nil
		}
		if !isValidIdentifier(sub) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, sub)
		}

		return sub, nil
	}
}

// NewHeaderResolver extracts the tenant slug from an HTTP header.
// Defaults to "X-Tenant-ID" if headerName is empty.
func NewHeaderResolver(headerName string) Resolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}

	return func(req *http.Request) (string, error) {
		value := strings.TrimSpace(req.Header.Get(headerName))
		if value == "" {
			return "", nil
		}
		if !isValidIdentifier(value) {
			return "", fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, value)
		}

		return value, nil
	}
}

// NewCompositeResolver tries resolvers in order, returning the first
// non-empty identifier. Errors from individual resolvers are aggregated and
// reported only when no resolver produces an identifier.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error

		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}

		if len(errs) > 0 {
			return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
		}

		return "", nil
	}
}
