// Package slug generates and validates tenant slugs. The slug is the
// tenant's primary key and determines its store namespace, so the rules here
// are deliberately strict: lowercase alphanumerics and hyphens, bounded
// length, and a reserved-word list covering routes the platform itself uses.
package slug

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	MinLength = 3
	MaxLength = 50
)

var (
	ErrInvalidSlug  = errors.New("invalid tenant slug")
	ErrReservedSlug = errors.New("tenant slug is reserved")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

// reserved lists slugs that collide with platform routes or infrastructure
// names and can never be claimed by a tenant.
var reserved = map[string]struct{}{
	"api": {}, "admin": {}, "super-admin": {}, "www": {}, "mail": {}, "ftp": {},
	"localhost": {}, "staging": {}, "production": {}, "test": {}, "demo": {},
	"app": {}, "web": {}, "mobile": {}, "ios": {}, "android": {}, "dashboard": {},
	"auth": {}, "login": {}, "register": {}, "logout": {}, "password": {},
	"health": {}, "ping": {}, "version": {}, "status": {}, "docs": {}, "swagger": {},
}

// Validate checks slug shape and the reserved list. Returns ErrInvalidSlug
// or ErrReservedSlug (wrapped with detail) on failure.
func Validate(s string) error {
	if len(s) < MinLength || len(s) > MaxLength || !slugPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, s)
	}
	if _, ok := reserved[s]; ok {
		return fmt.Errorf("%w: %q", ErrReservedSlug, s)
	}
	return nil
}

// IsReserved reports whether the slug is on the reserved list.
func IsReserved(s string) bool {
	_, ok := reserved[s]
	return ok
}

// Make derives a slug from a display name: lowercase, non-alphanumerics
// collapsed to single hyphens, trimmed to MaxLength. Names that reduce to a
// reserved or too-short slug get a random suffix appended.
func Make(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-")
	}

	if len(s) < MinLength || IsReserved(s) {
		s = withSuffix(s)
	}
	return s
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func withSuffix(s string) string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = suffixAlphabet[int(buf[i])%len(suffixAlphabet)]
	}

	if s == "" {
		return "tenant-" + string(buf)
	}
	suffixed := s + "-" + string(buf)
	if len(suffixed) > MaxLength {
		suffixed = suffixed[len(suffixed)-MaxLength:]
		suffixed = strings.Trim(suffixed, "-")
	}
	return suffixed
}
