package models

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// Full-variant statuses. The simple variant uses StatusOpen, StatusInProgress
// and StatusDone only.
const (
	StatusBacklog       TaskStatus = "backlog"
	StatusAssigned      TaskStatus = "assigned"
	StatusInProgress    TaskStatus = "in_progress"
	StatusPendingReview TaskStatus = "pending_review"
	StatusDone          TaskStatus = "done"
	StatusBlocked       TaskStatus = "blocked"
	StatusOpen          TaskStatus = "open"
)

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Task is the core work item in Diwan.
type Task struct {
	ID          string       `gorm:"primaryKey;size:36"`
	Title       string       `gorm:"not null"`
	Description string       `gorm:"type:text"`
	Priority    TaskPriority `gorm:"size:16;default:medium"`
	Status      TaskStatus   `gorm:"size:16;default:backlog;index"`

	AssigneeID *string `gorm:"size:36;index"`
	ReviewerID *string `gorm:"size:36"`
	CreatedBy  *string `gorm:"size:36"`

	CompanyID    *string `gorm:"size:36"`
	TaskTypeID   *string `gorm:"size:36"`
	ProjectID    *string `gorm:"size:36;index"`
	SectionID    *string `gorm:"size:36"`
	ParentTaskID *string `gorm:"size:36;index"`

	EstimatedHours *float64
	ActualHours    *float64
	Position       int `gorm:"default:0"`

	StartDate *time.Time
	DueDate   *time.Time

	StartedAt   *time.Time
	CompletedAt *time.Time
	ReviewedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Parent   *Task  `gorm:"foreignKey:ParentTaskID"`
	Subtasks []Task `gorm:"foreignKey:ParentTaskID"`
}

// TaskReviewer maps a task to its designated reviewer, one row per task.
// Replacing a reviewer deletes the old row and inserts a new one.
type TaskReviewer struct {
	ID         string    `gorm:"primaryKey;size:36"`
	TaskID     string    `gorm:"size:36;uniqueIndex"`
	ReviewerID string    `gorm:"size:36;index"`
	CreatedAt  time.Time

	Task     Task    `gorm:"foreignKey:TaskID"`
	Reviewer Profile `gorm:"foreignKey:ReviewerID"`
}
