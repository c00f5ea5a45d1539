package assignment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

// SetReviewer replaces the task's designated reviewer. Manager only. The
// join row is replaced wholesale (delete then insert) and the denormalized
// reviewer_id column on the task is kept in sync. Reviewer changes are not
// part of the activity log.
func SetReviewer(db *gorm.DB, actor task.Actor, taskID, reviewerID string) error {
	if !actor.IsManager() {
		return fmt.Errorf("%w: only a manager may set a reviewer", task.ErrUnauthorized)
	}
	if _, err := task.Get(db, taskID); err != nil {
		return err
	}
	var p models.Profile
	if err := db.Where("id = ?", reviewerID).First(&p).Error; err != nil {
		return fmt.Errorf("%w: profile %s", task.ErrNotFound, reviewerID)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskReviewer{}).Error; err != nil {
			return fmt.Errorf("assignment: clear reviewer of %s: %w", taskID, err)
		}
		row := models.TaskReviewer{
			ID:         uuid.NewString(),
			TaskID:     taskID,
			ReviewerID: reviewerID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("assignment: set reviewer of %s: %w", taskID, err)
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("reviewer_id", reviewerID).Error; err != nil {
			return fmt.Errorf("assignment: sync reviewer of %s: %w", taskID, err)
		}
		return nil
	})
}

// ClearReviewer removes the task's reviewer, if any. Manager only.
func ClearReviewer(db *gorm.DB, actor task.Actor, taskID string) error {
	if !actor.IsManager() {
		return fmt.Errorf("%w: only a manager may clear a reviewer", task.ErrUnauthorized)
	}
	if _, err := task.Get(db, taskID); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskReviewer{}).Error; err != nil {
			return fmt.Errorf("assignment: clear reviewer of %s: %w", taskID, err)
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("reviewer_id", nil).Error; err != nil {
			return fmt.Errorf("assignment: sync reviewer of %s: %w", taskID, err)
		}
		return nil
	})
}

// Reviewer returns the designated reviewer's profile for the task, or nil
// when none is set.
func Reviewer(db *gorm.DB, taskID string) (*models.Profile, error) {
	var row models.TaskReviewer
	err := db.Where("task_id = ?", taskID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assignment: reviewer of %s: %w", taskID, err)
	}
	var p models.Profile
	if err := db.Where("id = ?", row.ReviewerID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("assignment: reviewer profile %s: %w", row.ReviewerID, err)
	}
	return &p, nil
}
