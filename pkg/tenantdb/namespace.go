package tenantdb

import "regexp"

// namespacePattern keeps derived database names safe to interpolate into a
// DSN: lowercase alphanumerics, hyphens and underscores only.
var namespacePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Namespace derives the database name for a tenant slug. The derivation is
// deterministic: the same slug always addresses the same database.
func Namespace(prefix, slug string) string {
	return prefix + slug
}

// ValidNamespace reports whether a derived namespace is safe to use as a
// database name.
func ValidNamespace(ns string) bool {
	return len(ns) > 0 && len(ns) <= 63 && namespacePattern.MatchString(ns)
}
