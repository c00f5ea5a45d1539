package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/nbukhari/diwan/internal/models"
	"gorm.io/gorm"
)

// Authorize checks whether actor may move the task to target, given its
// current status. It returns nil when the transition is allowed.
//
// Managers and assistant managers may force any valid status. Everyone
// else is bound to the lifecycle: an assignee starts and blocks their own
// tasks, entering review requires a reviewer on record, and leaving review
// is reserved for the reviewer or a manager.
func Authorize(db *gorm.DB, schema Schema, actor Actor, t *models.Task, target models.TaskStatus) error {
	if t.Status == target {
		return nil
	}

	if target == models.StatusPendingReview {
		reviewerID, err := reviewerOf(db, t.ID)
		if err != nil {
			return err
		}
		if reviewerID == "" {
			return ErrReviewerRequired
		}
		if actor.Supervisory() || isAssignee(t, actor.ID) || reviewerID == actor.ID {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrForbiddenTransition, t.Status, target)
	}

	if actor.Supervisory() {
		return nil
	}

	if t.Status == models.StatusPendingReview {
		// Only the reviewer resolves a review, in either direction.
		reviewerID, err := reviewerOf(db, t.ID)
		if err != nil {
			return err
		}
		if reviewerID == actor.ID &&
			(target == models.StatusDone || target == models.StatusInProgress) {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrForbiddenTransition, t.Status, target)
	}

	if isAssignee(t, actor.ID) {
		switch target {
		case models.StatusInProgress, models.StatusBlocked, models.StatusAssigned, models.StatusOpen:
			return nil
		case models.StatusDone:
			// Without review in the schema the assignee closes directly.
			if !schema.HasReview() {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %s -> %s", ErrForbiddenTransition, t.Status, target)
}

// Transition moves a task to the target status, deriving lifecycle
// timestamps and recording the change in the activity log. The activity
// append is best-effort: a failure there is logged but does not undo the
// status change.
func Transition(db *gorm.DB, schema Schema, actor Actor, taskID string, target models.TaskStatus) (*models.Task, error) {
	if !schema.ValidStatus(target) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	t, err := Get(db, taskID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(db, schema, actor, t, target); err != nil {
		return nil, err
	}
	if t.Status == target {
		return t, nil
	}

	now := time.Now()
	updates := map[string]interface{}{"status": target}
	switch target {
	case models.StatusInProgress:
		if t.StartedAt == nil {
			updates["started_at"] = now
		}
		if t.Status == models.StatusPendingReview {
			// A returned task keeps its review trail.
			updates["reviewed_at"] = now
		}
	case models.StatusDone:
		// A task closed straight from the backlog still gets a start mark,
		// so done always implies started.
		if t.StartedAt == nil {
			updates["started_at"] = now
		}
		updates["completed_at"] = now
		if schema.HasReview() {
			updates["reviewed_at"] = now
		}
	}

	if err := db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task: transition %s to %s: %w", taskID, target, err)
	}

	from := statusRef(t.Status)
	appendActivityBestEffort(db, taskID, actor.ID, models.ActionStatusChange, from, statusRef(target))

	return Get(db, taskID)
}

// ChangePriority updates the task's priority. Allowed for a supervisor or
// the assignee; the change is recorded in the activity log.
func ChangePriority(db *gorm.DB, schema Schema, actor Actor, taskID string, target models.TaskPriority) (*models.Task, error) {
	if !schema.ValidPriority(target) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, target)
	}

	t, err := Get(db, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.Supervisory() && !isAssignee(t, actor.ID) {
		return nil, fmt.Errorf("%w: only a manager or the assignee may change priority", ErrUnauthorized)
	}
	if t.Priority == target {
		return t, nil
	}

	if err := db.Model(&models.Task{}).Where("id = ?", taskID).
		Update("priority", target).Error; err != nil {
		return nil, fmt.Errorf("task: change priority of %s: %w", taskID, err)
	}

	from := string(t.Priority)
	to := string(target)
	appendActivityBestEffort(db, taskID, actor.ID, models.ActionPriorityChange, &from, &to)

	return Get(db, taskID)
}

// reviewerOf returns the ID of the task's reviewer, or "" when none is set.
func reviewerOf(db *gorm.DB, taskID string) (string, error) {
	var r models.TaskReviewer
	err := db.Where("task_id = ?", taskID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("task: reviewer of %s: %w", taskID, err)
	}
	return r.ReviewerID, nil
}
