package models

import "time"

// Message is a direct message between two profiles. Read state lives on
// the message itself; the receiver also gets a Notification row linking
// back to it.
type Message struct {
	ID         string `gorm:"primaryKey;size:36"`
	SenderID   string `gorm:"size:36;index"`
	ReceiverID string `gorm:"size:36;index"`
	Subject    string `gorm:"size:256;not null"`
	Body       string `gorm:"type:text;not null"`
	IsRead     bool   `gorm:"default:false"`
	ReadAt     *time.Time
	CreatedAt  time.Time
}
