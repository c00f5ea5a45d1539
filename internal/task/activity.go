package task

import (
	"fmt"

	"github.com/nbukhari/diwan/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AppendActivity records an entry in the task's activity log.
func AppendActivity(db *gorm.DB, taskID, actorID string, action string, from, to *string) error {
	entry := models.TaskActivity{
		TaskID:     taskID,
		ActorID:    &actorID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("task: append activity for %s: %w", taskID, err)
	}
	return nil
}

// appendActivityBestEffort records an activity entry and downgrades any
// failure to a warning. The state change it describes has already been
// committed and must not be undone by a logging error.
func appendActivityBestEffort(db *gorm.DB, taskID, actorID string, action string, from, to *string) {
	if err := AppendActivity(db, taskID, actorID, action, from, to); err != nil {
		logrus.WithError(err).WithField("task_id", taskID).Warn("activity log append failed")
	}
}

// ListActivity returns the task's activity entries, newest first.
func ListActivity(db *gorm.DB, taskID string) ([]models.TaskActivity, error) {
	var entries []models.TaskActivity
	if err := db.Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("task: list activity for %s: %w", taskID, err)
	}
	return entries, nil
}
