// Package registry persists tenant records in the central registry
// database. It is the single source of truth for tenant identity and
// lifecycle state: the tenant middleware resolves against it on every
// tenant-scoped request (through the cache), and the admin service writes
// lifecycle transitions through it.
//
// Rows are soft-deleted so the reference to a tenant's provisioned store
// survives for audit and recovery; resolution treats soft-deleted rows as
// missing. Status changes are single atomic UPDATEs, so a reader never
// observes a partially-updated record.
package registry
