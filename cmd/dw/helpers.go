package main

import (
	"fmt"

	"github.com/nbukhari/diwan/internal/config"
	"github.com/nbukhari/diwan/internal/db"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

// connInfo maps config database settings to the db package's ConnInfo.
func connInfo(cfg *config.Config) db.ConnInfo {
	return db.ConnInfo{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
	}
}

// buildSchema maps config schema settings to a task.Schema.
func buildSchema(cfg *config.Config) task.Schema {
	return task.Schema{
		Variant:       task.Variant(cfg.Schema.Variant),
		AllowCritical: cfg.Schema.AllowCritical,
		ExtendedRoles: cfg.Schema.ExtendedRoles,
	}
}

// openFromConfig loads the config file and connects to its database.
func openFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(connInfo(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// resolveActor loads the profile acting on behalf of CLI operations.
func resolveActor(gormDB *gorm.DB, actorID string) (task.Actor, error) {
	if actorID == "" {
		return task.Actor{}, fmt.Errorf("--as is required: pass the acting profile id")
	}
	var p models.Profile
	if err := gormDB.Where("id = ?", actorID).First(&p).Error; err != nil {
		return task.Actor{}, fmt.Errorf("load profile %s: %w", actorID, err)
	}
	return task.Actor{ID: p.ID, Role: p.Role}, nil
}

// deref returns the string behind an optional column, or dash when unset.
func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
