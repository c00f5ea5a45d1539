package models

import "time"

// Activity action kinds.
const (
	ActionStatusChange   = "status_change"
	ActionAssignment     = "assignment"
	ActionPriorityChange = "priority_change"
)

// TaskActivity is an append-only audit record of a task change. Rows are
// never updated or deleted outside the task deletion cascade.
type TaskActivity struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	TaskID     string  `gorm:"size:36;index"`
	ActorID    *string `gorm:"size:36"`
	Action     string  `gorm:"size:24;not null"`
	FromStatus *string `gorm:"size:16"`
	ToStatus   *string `gorm:"size:16"`
	CreatedAt  time.Time
}
