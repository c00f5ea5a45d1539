package models

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
	ProjectOnHold   ProjectStatus = "on_hold"
)

// Project groups tasks under a shared goal.
type Project struct {
	ID          string        `gorm:"primaryKey;size:36"`
	Name        string        `gorm:"size:128;not null"`
	Description string        `gorm:"type:text"`
	OwnerID     *string       `gorm:"size:36"`
	CompanyID   *string       `gorm:"size:36"`
	Status      ProjectStatus `gorm:"size:16;default:active"`
	Color       string        `gorm:"size:16"`
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Section is a board column within a project, manually ordered.
type Section struct {
	ID        string `gorm:"primaryKey;size:36"`
	ProjectID string `gorm:"size:36;index"`
	Name      string `gorm:"size:128;not null"`
	Position  int    `gorm:"default:0"`
	CreatedAt time.Time
}
