package models

import "time"

// TaskComment is a discussion entry on a task.
type TaskComment struct {
	ID        string  `gorm:"primaryKey;size:36"`
	TaskID    string  `gorm:"size:36;index"`
	UserID    *string `gorm:"size:36"`
	Content   string  `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskAttachment records a file stored in external object storage.
type TaskAttachment struct {
	ID         string  `gorm:"primaryKey;size:36"`
	TaskID     string  `gorm:"size:36;index"`
	FileName   string  `gorm:"size:256;not null"`
	FileURL    string  `gorm:"size:512;not null"`
	FileSize   *int64
	FileType   *string `gorm:"size:64"`
	UploadedBy *string `gorm:"size:36"`
	CreatedAt  time.Time
}
