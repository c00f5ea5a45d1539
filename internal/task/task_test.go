package task

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Task{},
		&models.TaskReviewer{},
		&models.TaskActivity{},
		&models.TaskComment{},
		&models.TaskAttachment{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, role models.Role) Actor {
	t.Helper()
	p := models.Profile{ID: uuid.NewString(), FullName: "Test " + string(role), Role: role}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return Actor{ID: p.ID, Role: p.Role}
}

func setReviewer(t *testing.T, db *gorm.DB, taskID, reviewerID string) {
	t.Helper()
	r := models.TaskReviewer{ID: uuid.NewString(), TaskID: taskID, ReviewerID: reviewerID}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed reviewer: %v", err)
	}
	if err := db.Model(&models.Task{}).Where("id = ?", taskID).
		Update("reviewer_id", reviewerID).Error; err != nil {
		t.Fatalf("sync reviewer column: %v", err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	db := openTestDB(t)
	manager := seedProfile(t, db, models.RoleManager)

	_, err := Create(db, DefaultSchema(), manager, CreateOpts{Title: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateDefaults(t *testing.T) {
	db := openTestDB(t)
	manager := seedProfile(t, db, models.RoleManager)

	created, err := Create(db, DefaultSchema(), manager, CreateOpts{Title: "Draft report"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.StatusBacklog {
		t.Errorf("status = %q, want backlog", created.Status)
	}
	if created.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want medium", created.Priority)
	}
	if created.CreatedBy == nil || *created.CreatedBy != manager.ID {
		t.Errorf("created_by not set to actor")
	}
}

func TestCreateWithAssigneeStartsAssigned(t *testing.T) {
	db := openTestDB(t)
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, DefaultSchema(), manager, CreateOpts{
		Title:      "Prepare slides",
		AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.StatusAssigned {
		t.Errorf("status = %q, want assigned", created.Status)
	}

	entries, err := ListActivity(db, created.ID)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != models.ActionAssignment {
		t.Errorf("expected one assignment activity entry, got %+v", entries)
	}
}

func TestCreateEmployeeForbidden(t *testing.T) {
	db := openTestDB(t)
	employee := seedProfile(t, db, models.RoleEmployee)

	_, err := Create(db, DefaultSchema(), employee, CreateOpts{Title: "Rogue task"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateSubtaskByParentAssignee(t *testing.T) {
	db := openTestDB(t)
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)

	parent, err := Create(db, DefaultSchema(), manager, CreateOpts{
		Title:      "Quarterly review",
		AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	sub, err := Create(db, DefaultSchema(), employee, CreateOpts{
		Title:        "Collect figures",
		ParentTaskID: parent.ID,
	})
	if err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	if sub.ParentTaskID == nil || *sub.ParentTaskID != parent.ID {
		t.Errorf("subtask parent not set")
	}

	other := seedProfile(t, db, models.RoleEmployee)
	if _, err := Create(db, DefaultSchema(), other, CreateOpts{
		Title:        "Sneaky subtask",
		ParentTaskID: parent.ID,
	}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for non-assignee subtask, got %v", err)
	}
}

func TestCreateSimpleVariantSelfService(t *testing.T) {
	db := openTestDB(t)
	employee := seedProfile(t, db, models.RoleEmployee)
	schema := Schema{Variant: VariantSimple}

	created, err := Create(db, schema, employee, CreateOpts{Title: "Note to self"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.StatusOpen {
		t.Errorf("status = %q, want open", created.Status)
	}
}

func TestGetNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := Get(db, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)

	assigned, err := Create(db, DefaultSchema(), manager, CreateOpts{
		Title: "Assigned one", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	loose, err := Create(db, DefaultSchema(), manager, CreateOpts{Title: "Loose one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byAssignee, err := List(db, ListFilters{AssigneeID: employee.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byAssignee) != 1 || byAssignee[0].ID != assigned.ID {
		t.Errorf("assignee filter returned %d tasks", len(byAssignee))
	}

	unassigned, err := List(db, ListFilters{Unassigned: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unassigned) != 1 || unassigned[0].ID != loose.ID {
		t.Errorf("unassigned filter returned %d tasks", len(unassigned))
	}

	byStatus, err := List(db, ListFilters{Status: models.StatusAssigned})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != assigned.ID {
		t.Errorf("status filter returned %d tasks", len(byStatus))
	}
}

func TestUpdateFieldsAuthorization(t *testing.T) {
	db := openTestDB(t)
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)
	outsider := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, DefaultSchema(), manager, CreateOpts{
		Title: "Edit me", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Edited"
	if _, err := UpdateFields(db, outsider, created.ID, UpdateOpts{Title: &title}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for outsider, got %v", err)
	}

	updated, err := UpdateFields(db, employee, created.ID, UpdateOpts{Title: &title})
	if err != nil {
		t.Fatalf("assignee update: %v", err)
	}
	if updated.Title != "Edited" {
		t.Errorf("title = %q, want Edited", updated.Title)
	}

	empty := " "
	if _, err := UpdateFields(db, manager, created.ID, UpdateOpts{Title: &empty}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for blank title, got %v", err)
	}
}

func TestDeleteCascade(t *testing.T) {
	db := openTestDB(t)
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)
	reviewer := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, DefaultSchema(), manager, CreateOpts{
		Title: "Doomed", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sub, err := Create(db, DefaultSchema(), manager, CreateOpts{
		Title: "Survivor", ParentTaskID: created.ID,
	})
	if err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	setReviewer(t, db, created.ID, reviewer.ID)
	comment := models.TaskComment{ID: uuid.NewString(), TaskID: created.ID, UserID: &employee.ID, Content: "note"}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	if err := Delete(db, employee, created.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for employee delete, got %v", err)
	}
	if err := Delete(db, manager, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := Get(db, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("task still present after delete")
	}
	var counts = []struct {
		name  string
		model interface{}
	}{
		{"comments", &models.TaskComment{}},
		{"activity", &models.TaskActivity{}},
		{"reviewers", &models.TaskReviewer{}},
	}
	for _, c := range counts {
		var n int64
		if err := db.Model(c.model).Where("task_id = ?", created.ID).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", c.name, err)
		}
		if n != 0 {
			t.Errorf("%d %s rows left after delete", n, c.name)
		}
	}

	orphan, err := Get(db, sub.ID)
	if err != nil {
		t.Fatalf("get subtask: %v", err)
	}
	if orphan.ParentTaskID != nil {
		t.Errorf("subtask still points at deleted parent")
	}
}
