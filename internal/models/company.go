package models

import "time"

// Company is an optional classification tag for client work.
type Company struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:128;not null"`
	LegalName string `gorm:"size:256"`
	Sector    string `gorm:"size:64"`
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskType is an optional classification tag for tasks.
type TaskType struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"type:text"`
	Color       string `gorm:"size:16"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
