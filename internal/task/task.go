package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	Title          string
	Description    string
	Priority       models.TaskPriority
	AssigneeID     string
	CompanyID      string
	TaskTypeID     string
	ProjectID      string
	SectionID      string
	ParentTaskID   string
	EstimatedHours *float64
	Position       int
	StartDate      *time.Time
	DueDate        *time.Time
}

// ListFilters holds optional filters for listing tasks.
type ListFilters struct {
	Status       models.TaskStatus
	AssigneeID   string
	CreatedBy    string
	ProjectID    string
	SectionID    string
	ParentTaskID string
	Unassigned   bool
}

// Create creates a new task. In the full variant only managers create
// top-level tasks; subtasks may also be created by the parent's assignee.
// Status defaults to the assignment state when an assignee is supplied.
func Create(db *gorm.DB, schema Schema, actor Actor, opts CreateOpts) (*models.Task, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !schema.ValidPriority(opts.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, opts.Priority)
	}

	var parent *models.Task
	if opts.ParentTaskID != "" {
		var p models.Task
		if err := db.Where("id = ?", opts.ParentTaskID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent task %s", ErrNotFound, opts.ParentTaskID)
			}
			return nil, fmt.Errorf("task: check parent %s: %w", opts.ParentTaskID, err)
		}
		parent = &p
		if opts.ProjectID == "" && p.ProjectID != nil {
			opts.ProjectID = *p.ProjectID
		}
	}

	if schema.HasReview() && !actor.Supervisory() {
		// Employees may only add subtasks under tasks assigned to them.
		allowed := parent != nil && parent.AssigneeID != nil && *parent.AssigneeID == actor.ID
		if !allowed {
			return nil, fmt.Errorf("%w: only a manager may create tasks", ErrUnauthorized)
		}
	}

	status := schema.DefaultStatus()
	if opts.AssigneeID != "" {
		status = schema.ClaimStatus()
	}

	t := models.Task{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(opts.Title),
		Description:    opts.Description,
		Priority:       opts.Priority,
		Status:         status,
		CreatedBy:      &actor.ID,
		EstimatedHours: opts.EstimatedHours,
		Position:       opts.Position,
		StartDate:      opts.StartDate,
		DueDate:        opts.DueDate,
	}
	setOptionalRef(&t.AssigneeID, opts.AssigneeID)
	setOptionalRef(&t.CompanyID, opts.CompanyID)
	setOptionalRef(&t.TaskTypeID, opts.TaskTypeID)
	setOptionalRef(&t.ProjectID, opts.ProjectID)
	setOptionalRef(&t.SectionID, opts.SectionID)
	setOptionalRef(&t.ParentTaskID, opts.ParentTaskID)

	if err := db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}

	if t.AssigneeID != nil {
		appendActivityBestEffort(db, t.ID, actor.ID, models.ActionAssignment, nil, statusRef(t.Status))
	}

	return &t, nil
}

// Get retrieves a task by ID.
func Get(db *gorm.DB, id string) (*models.Task, error) {
	var t models.Task
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return &t, nil
}

// List returns tasks matching the given filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Task, error) {
	q := db.Model(&models.Task{})

	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.AssigneeID != "" {
		q = q.Where("assignee_id = ?", filters.AssigneeID)
	}
	if filters.CreatedBy != "" {
		q = q.Where("created_by = ?", filters.CreatedBy)
	}
	if filters.ProjectID != "" {
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.SectionID != "" {
		q = q.Where("section_id = ?", filters.SectionID)
	}
	if filters.ParentTaskID != "" {
		q = q.Where("parent_task_id = ?", filters.ParentTaskID)
	}
	if filters.Unassigned {
		q = q.Where("assignee_id IS NULL")
	}

	var tasks []models.Task
	if err := q.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}
	return tasks, nil
}

// UpdateOpts holds the descriptive fields a caller may patch. Nil pointers
// leave the stored value untouched.
type UpdateOpts struct {
	Title          *string
	Description    *string
	StartDate      *time.Time
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	SectionID      *string
	Position       *int
}

// UpdateFields patches descriptive task fields. Allowed for a supervisor or
// the task's assignee. Status and priority are not reachable from here.
func UpdateFields(db *gorm.DB, actor Actor, id string, opts UpdateOpts) (*models.Task, error) {
	t, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.Supervisory() && !isAssignee(t, actor.ID) {
		return nil, fmt.Errorf("%w: only a manager or the assignee may edit a task", ErrUnauthorized)
	}

	updates := map[string]interface{}{}
	if opts.Title != nil {
		if strings.TrimSpace(*opts.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", ErrValidation)
		}
		updates["title"] = strings.TrimSpace(*opts.Title)
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
	}
	if opts.StartDate != nil {
		updates["start_date"] = *opts.StartDate
	}
	if opts.DueDate != nil {
		updates["due_date"] = *opts.DueDate
	}
	if opts.EstimatedHours != nil {
		updates["estimated_hours"] = *opts.EstimatedHours
	}
	if opts.ActualHours != nil {
		updates["actual_hours"] = *opts.ActualHours
	}
	if opts.SectionID != nil {
		if *opts.SectionID == "" {
			updates["section_id"] = nil
		} else {
			updates["section_id"] = *opts.SectionID
		}
	}
	if opts.Position != nil {
		updates["position"] = *opts.Position
	}
	if len(updates) == 0 {
		return t, nil
	}

	if err := db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task: update %s: %w", id, err)
	}
	return Get(db, id)
}

// Delete removes a task and everything hanging off it: comments,
// attachments, activity, the reviewer row and related notifications.
// Subtasks are orphaned, not deleted. Manager only; one transaction.
func Delete(db *gorm.DB, actor Actor, id string) error {
	if !actor.IsManager() {
		return fmt.Errorf("%w: only a manager may delete a task", ErrUnauthorized)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var t models.Task
		if err := tx.Where("id = ?", id).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return fmt.Errorf("task: get %s for delete: %w", id, err)
		}

		if err := tx.Model(&models.Task{}).Where("parent_task_id = ?", id).
			Update("parent_task_id", nil).Error; err != nil {
			return fmt.Errorf("task: orphan subtasks of %s: %w", id, err)
		}
		for _, cleanup := range []struct {
			name  string
			model interface{}
			col   string
		}{
			{"comments", &models.TaskComment{}, "task_id"},
			{"attachments", &models.TaskAttachment{}, "task_id"},
			{"activity", &models.TaskActivity{}, "task_id"},
			{"reviewer", &models.TaskReviewer{}, "task_id"},
		} {
			if err := tx.Where(cleanup.col+" = ?", id).Delete(cleanup.model).Error; err != nil {
				return fmt.Errorf("task: delete %s of %s: %w", cleanup.name, id, err)
			}
		}
		if err := tx.Where("link = ?", "/tasks/"+id).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("task: delete notifications of %s: %w", id, err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("task: delete %s: %w", id, err)
		}
		return nil
	})
}

// isAssignee reports whether userID is the task's current assignee.
func isAssignee(t *models.Task, userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// setOptionalRef stores a non-empty id into an optional reference column.
func setOptionalRef(dst **string, v string) {
	if v != "" {
		s := v
		*dst = &s
	}
}

// statusRef returns the status as an optional activity column value.
func statusRef(st models.TaskStatus) *string {
	s := string(st)
	return &s
}
