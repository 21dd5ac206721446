// Package access decides what an actor may see and change. The actor comes
// from an external identity provider; an unauthenticated caller is a guest.
package access

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleGuest       Role = "guest"
	RoleVolunteer   Role = "volunteer"
	RoleGridManager Role = "grid_manager"
	RoleAdmin       Role = "admin"
)

// RedactedPlaceholder replaces sensitive contact values for callers that
// may not see them.
const RedactedPlaceholder = "(visible to coordinators only)"

var ErrForbidden = errors.New("forbidden")

type Actor struct {
	ID   string
	Role Role
}

func Guest() Actor {
	return Actor{Role: RoleGuest}
}

func ParseRole(value string) (Role, bool) {
	switch role := Role(strings.ToLower(strings.TrimSpace(value))); role {
	case RoleGuest, RoleVolunteer, RoleGridManager, RoleAdmin:
		return role, true
	default:
		return RoleGuest, false
	}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsGuest() bool {
	return a.ID == "" || a.Role == RoleGuest
}

// ActorID returns a pointer to the actor id, or nil for guests.
func (a Actor) ActorID() *string {
	if a.IsGuest() {
		return nil
	}
	id := a.ID
	return &id
}

func RequireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanCoordinate reports whether actor may advance registrations and
// donations on a grid managed by gridManagerID.
func CanCoordinate(actor Actor, gridManagerID *string) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == RoleGridManager &&
		actor.ID != "" &&
		gridManagerID != nil &&
		*gridManagerID == actor.ID
}

// CanViewContact applies the same scoping as CanCoordinate.
func CanViewContact(actor Actor, gridManagerID *string) bool {
	return CanCoordinate(actor, gridManagerID)
}

func RequireCoordinator(actor Actor, gridManagerID *string) error {
	if !CanCoordinate(actor, gridManagerID) {
		return ErrForbidden
	}
	return nil
}

// Redact hides a non-empty value.
func Redact(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedPlaceholder
}
