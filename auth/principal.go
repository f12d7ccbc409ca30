// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"slices"

	"github.com/danielhkuo/campus-vote/models"
)

var ErrInsufficientRole = errors.New("principal lacks the required role")

// Principal is the identity resolved once per request: either a
// VoterPrincipal or an AdminPrincipal.
type Principal interface {
	principal()
}

// VoterPrincipal is a voter authenticated for one election.
type VoterPrincipal struct {
	Voter       models.Voter
	Fingerprint string
}

// AdminPrincipal is an administrative account with a single role.
type AdminPrincipal struct {
	Username string
	Role     string
}

func (VoterPrincipal) principal() {}
func (AdminPrincipal) principal() {}

// RequireRole succeeds only for an AdminPrincipal holding one of roles.
func RequireRole(p Principal, roles ...string) error {
	admin, ok := p.(AdminPrincipal)
	if !ok || !slices.Contains(roles, admin.Role) {
		return ErrInsufficientRole
	}
	return nil
}

// ValidRole reports whether role names a known admin role.
func ValidRole(role string) bool {
	switch role {
	case models.RoleSuperuser, models.RoleStaff, models.RoleActivator:
		return true
	}
	return false
}
