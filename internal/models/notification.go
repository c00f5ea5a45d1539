package models

import "time"

// Notification is a per-user feed entry surfaced in the dashboard dropdown.
type Notification struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:36;index"`
	Type      string `gorm:"size:32;not null"`
	Title     string `gorm:"size:256;not null"`
	Content   string `gorm:"type:text"`
	Link      string `gorm:"size:256"`
	Read      bool   `gorm:"default:false;index"`
	CreatedAt time.Time
}
