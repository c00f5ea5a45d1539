// Package task provides the task lifecycle core: entity operations, the
// transition rules, and the per-task activity log.
package task

import "github.com/nbukhari/diwan/internal/models"

// Variant selects the active status schema.
type Variant string

const (
	// VariantFull is the canonical six-status workflow with a review step.
	VariantFull Variant = "full"
	// VariantSimple is the reduced three-status workflow with no review step.
	VariantSimple Variant = "simple"
)

// Schema describes the legal value space for tasks under the active variant.
type Schema struct {
	Variant       Variant
	AllowCritical bool // permit the critical priority
	ExtendedRoles bool // permit the assistant_manager role
}

// DefaultSchema is the canonical full-variant schema.
func DefaultSchema() Schema {
	return Schema{Variant: VariantFull}
}

var fullStatuses = []models.TaskStatus{
	models.StatusBacklog,
	models.StatusAssigned,
	models.StatusInProgress,
	models.StatusPendingReview,
	models.StatusDone,
	models.StatusBlocked,
}

var simpleStatuses = []models.TaskStatus{
	models.StatusOpen,
	models.StatusInProgress,
	models.StatusDone,
}

// Statuses returns the status values valid under this schema.
func (s Schema) Statuses() []models.TaskStatus {
	if s.Variant == VariantSimple {
		return simpleStatuses
	}
	return fullStatuses
}

// ValidStatus reports whether st is a legal status under this schema.
func (s Schema) ValidStatus(st models.TaskStatus) bool {
	for _, v := range s.Statuses() {
		if v == st {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is a legal priority under this schema.
func (s Schema) ValidPriority(p models.TaskPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	case models.PriorityCritical:
		return s.AllowCritical
	}
	return false
}

// ValidRole reports whether r is a legal role under this schema.
func (s Schema) ValidRole(r models.Role) bool {
	switch r {
	case models.RoleManager, models.RoleEmployee:
		return true
	case models.RoleAssistantManager:
		return s.ExtendedRoles
	}
	return false
}

// HasReview reports whether the review step exists under this schema.
func (s Schema) HasReview() bool {
	return s.Variant != VariantSimple
}

// DefaultStatus is the status of a freshly created, unassigned task.
func (s Schema) DefaultStatus() models.TaskStatus {
	if s.Variant == VariantSimple {
		return models.StatusOpen
	}
	return models.StatusBacklog
}

// ClaimStatus is the status a task takes when an assignee is set. The simple
// variant has no assignment state, so claiming keeps the task open.
func (s Schema) ClaimStatus() models.TaskStatus {
	if s.Variant == VariantSimple {
		return models.StatusOpen
	}
	return models.StatusAssigned
}
