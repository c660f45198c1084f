// Package identity defines roles and the authenticated principal shared by
// the HTTP layer and the domain services. It sits below every other
// internal package so any of them can inspect the caller.
package identity

import (
	"context"
	"fmt"
	"strings"
)

// Role classifies what a user is allowed to do.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDriver    Role = "DRIVER"
	RolePassenger Role = "PASSENGER"
	RoleUser      Role = "USER"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDriver, RolePassenger, RoleUser}
}

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range Roles() {
		if role == r {
			return role, nil
		}
	}
	names := make([]string, 0, len(Roles()))
	for _, r := range Roles() {
		names = append(names, string(r))
	}
	return "", fmt.Errorf("invalid user role: %s. Valid roles: %s", s, strings.Join(names, ", "))
}

// Principal is the authenticated identity bound to a request. It lives in
// the request context only and is discarded when the response is sent.
type Principal struct {
	UserID     string
	Identifier string
	Role       Role
}

// HasRole reports whether the principal holds one of the given roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext extracts the request principal, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
