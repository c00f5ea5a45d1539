package task

import "github.com/nbukhari/diwan/internal/models"

// Actor identifies who is performing a lifecycle operation. It is passed
// explicitly into every call; there is no ambient session state.
type Actor struct {
	ID   string
	Role models.Role
}

// IsManager reports whether the actor holds the manager role proper.
// Deleting tasks, managing users and assigning reviewers require this.
func (a Actor) IsManager() bool {
	return a.Role == models.RoleManager
}

// Supervisory reports whether the actor may exercise the manager status
// override. Assistant managers share the override but not deletion rights.
func (a Actor) Supervisory() bool {
	return a.Role == models.RoleManager || a.Role == models.RoleAssistantManager
}
