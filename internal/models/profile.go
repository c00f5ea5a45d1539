package models

import "time"

// Role determines what lifecycle actions a user may perform.
type Role string

const (
	RoleManager          Role = "manager"
	RoleAssistantManager Role = "assistant_manager"
	RoleEmployee         Role = "employee"
)

// Profile is a team member. The ID mirrors the auth provider's user id.
type Profile struct {
	ID        string `gorm:"primaryKey;size:36"`
	FullName  string `gorm:"size:128"`
	Role      Role   `gorm:"size:24;default:employee"`
	CreatedAt time.Time
}
