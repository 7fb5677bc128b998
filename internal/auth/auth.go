// ABOUTME: Authorization capability gating destructive directory operations
// ABOUTME: Static admin-token implementation with constant-time comparison

package auth

import "crypto/subtle"

// Context answers whether the caller may perform destructive operations
// such as bulk deletion or removing a tracked feed. Commands receive a
// Context rather than inspecting credentials themselves.
type Context interface {
	IsAuthorized() bool
}

// StaticToken authorizes when the presented token matches the configured
// admin token. An empty configured token authorizes nobody.
type StaticToken struct {
	configured string
	presented  string
}

// NewStaticToken builds a token-based authorization context.
func NewStaticToken(configured, presented string) *StaticToken {
	return &StaticToken{configured: configured, presented: presented}
}

// IsAuthorized reports whether the presented token matches.
func (s *StaticToken) IsAuthorized() bool {
	if s.configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.configured), []byte(s.presented)) == 1
}

// Denied is a Context that never authorizes.
type Denied struct{}

func (Denied) IsAuthorized() bool { return false }
