// Package assignment handles who works on a task: claiming unassigned
// tasks, direct assignment, reviewer designation and user removal.
package assignment

import (
	"fmt"

	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

// Claim atomically assigns an unassigned task to the actor. Two concurrent
// claims race on a guarded update; the loser sees zero affected rows and
// gets ErrAlreadyAssigned while the task keeps its first winner.
func Claim(db *gorm.DB, schema task.Schema, actor task.Actor, taskID string) (*models.Task, error) {
	t, err := task.Get(db, taskID)
	if err != nil {
		return nil, err
	}
	if t.AssigneeID != nil {
		return nil, fmt.Errorf("%w: task %s", task.ErrAlreadyAssigned, taskID)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND assignee_id IS NULL", taskID).
			Updates(map[string]interface{}{
				"assignee_id": actor.ID,
				"status":      schema.ClaimStatus(),
			})
		if res.Error != nil {
			return fmt.Errorf("assignment: claim %s: %w", taskID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task %s", task.ErrAlreadyAssigned, taskID)
		}
		to := string(schema.ClaimStatus())
		return task.AppendActivity(tx, taskID, actor.ID, models.ActionAssignment, nil, &to)
	})
	if err != nil {
		return nil, err
	}
	return task.Get(db, taskID)
}

// Assign sets or replaces a task's assignee. Managers and assistant
// managers only; a nil-equivalent empty userID clears the assignment and
// sends the task back to the schema's default status.
func Assign(db *gorm.DB, schema task.Schema, actor task.Actor, taskID, userID string) (*models.Task, error) {
	if !actor.Supervisory() {
		return nil, fmt.Errorf("%w: only a manager may assign tasks", task.ErrUnauthorized)
	}
	t, err := task.Get(db, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	var to *string
	if userID == "" {
		updates["assignee_id"] = nil
		if t.Status == schema.ClaimStatus() {
			updates["status"] = schema.DefaultStatus()
		}
	} else {
		var p models.Profile
		if err := db.Where("id = ?", userID).First(&p).Error; err != nil {
			return nil, fmt.Errorf("%w: profile %s", task.ErrNotFound, userID)
		}
		updates["assignee_id"] = userID
		if t.Status == schema.DefaultStatus() {
			updates["status"] = schema.ClaimStatus()
			s := string(schema.ClaimStatus())
			to = &s
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
			return fmt.Errorf("assignment: assign %s: %w", taskID, err)
		}
		if userID != "" {
			return task.AppendActivity(tx, taskID, actor.ID, models.ActionAssignment, nil, to)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task.Get(db, taskID)
}
