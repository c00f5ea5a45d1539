package assignment

import (
	"errors"
	"fmt"

	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

// RemoveUser deletes a profile and detaches it everywhere in a single
// transaction: tasks it was assigned to or created go back to having no
// assignee or creator, its reviewer designations, notifications and direct
// messages are removed, and finally the profile row itself. Manager only,
// and managers cannot remove themselves.
func RemoveUser(db *gorm.DB, actor task.Actor, userID string) error {
	if !actor.IsManager() {
		return fmt.Errorf("%w: only a manager may remove users", task.ErrUnauthorized)
	}
	if actor.ID == userID {
		return fmt.Errorf("%w: cannot remove own account", task.ErrValidation)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if err := tx.Where("id = ?", userID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: profile %s", task.ErrNotFound, userID)
			}
			return fmt.Errorf("assignment: get profile %s: %w", userID, err)
		}

		if err := tx.Model(&models.Task{}).Where("assignee_id = ?", userID).
			Update("assignee_id", nil).Error; err != nil {
			return fmt.Errorf("assignment: clear assignments of %s: %w", userID, err)
		}
		if err := tx.Model(&models.Task{}).Where("created_by = ?", userID).
			Update("created_by", nil).Error; err != nil {
			return fmt.Errorf("assignment: clear authorship of %s: %w", userID, err)
		}
		if err := tx.Model(&models.Task{}).Where("reviewer_id = ?", userID).
			Update("reviewer_id", nil).Error; err != nil {
			return fmt.Errorf("assignment: clear reviewer column of %s: %w", userID, err)
		}
		if err := tx.Where("reviewer_id = ?", userID).Delete(&models.TaskReviewer{}).Error; err != nil {
			return fmt.Errorf("assignment: delete reviewer rows of %s: %w", userID, err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("assignment: delete notifications of %s: %w", userID, err)
		}
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).
			Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("assignment: delete messages of %s: %w", userID, err)
		}
		if err := tx.Where("id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
			return fmt.Errorf("assignment: delete profile %s: %w", userID, err)
		}
		return nil
	})
}
