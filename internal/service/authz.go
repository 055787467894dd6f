package service

import (
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// PrincipalFromUser builds a Principal from a stored user.
func PrincipalFromUser(u *domain.User) Principal {
	return Principal{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Capability names a permission granted by a role.
type Capability string

// Capabilities granted by the built-in roles.
const (
	CapViewAllTasks Capability = "view-all-tasks"
	CapViewOwnTasks Capability = "view-own-tasks"
	CapEditAnyTask  Capability = "edit-any-task"
	CapEditOwnTasks Capability = "edit-own-tasks"
	CapManageUsers  Capability = "manage-users"
)

var roleCapabilities = map[domain.Role][]Capability{
	domain.RoleAdmin: {CapViewAllTasks, CapManageUsers, CapEditAnyTask},
	domain.RoleUser:  {CapViewOwnTasks, CapEditOwnTasks},
}

// Can reports whether p's role grants c.
func (p Principal) Can(c Capability) bool {
	for _, granted := range roleCapabilities[p.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

// RequireRole returns ErrForbidden unless p holds role.
func RequireRole(p Principal, role domain.Role) error {
	if p.Role != role {
		return ErrForbidden
	}
	return nil
}

// CanViewTask reports whether p may read t.
func CanViewTask(p Principal, t *domain.Task) bool {
	return p.Can(CapViewAllTasks) || t.AssignedTo == p.ID
}

// CanEditTask reports whether p may modify t.
func CanEditTask(p Principal, t *domain.Task) bool {
	return p.Can(CapEditAnyTask) || t.CreatedBy == p.ID || t.AssignedTo == p.ID
}

// CanDeleteTask reports whether p may delete t.
func CanDeleteTask(p Principal, t *domain.Task) bool {
	return p.Can(CapEditAnyTask) || t.CreatedBy == p.ID
}

// TaskScope returns the assignee filter to apply for p. Principals that may
// view every task keep whatever they asked for (nil means everyone); all
// others are pinned to themselves.
func TaskScope(p Principal, requested *uuid.UUID) *uuid.UUID {
	if p.Can(CapViewAllTasks) {
		return requested
	}
	id := p.ID
	return &id
}
