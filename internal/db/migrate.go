package db

import (
	"fmt"

	"github.com/nbukhari/diwan/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Company{},
		&models.TaskType{},
		&models.Project{},
		&models.Section{},
		&models.Task{},
		&models.TaskReviewer{},
		&models.TaskActivity{},
		&models.TaskComment{},
		&models.TaskAttachment{},
		&models.Message{},
		&models.Notification{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedManager upserts the bootstrap manager profile so a fresh database has
// at least one account able to create tasks and users.
func SeedManager(db *gorm.DB, id, fullName string) error {
	if id == "" {
		return fmt.Errorf("db: seed manager: id is required")
	}
	p := models.Profile{
		ID:       id,
		FullName: fullName,
		Role:     models.RoleManager,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "role"}),
	}).Create(&p)
	if result.Error != nil {
		return fmt.Errorf("db: seed manager %q: %w", id, result.Error)
	}
	return nil
}
