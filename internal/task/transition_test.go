package task

import (
	"errors"
	"testing"

	"github.com/nbukhari/diwan/internal/models"
)

// TestLifecycleHappyPath walks a task through the full workflow: created in
// backlog, picked up by an employee, submitted for review once a reviewer
// exists, and closed by that reviewer.
func TestLifecycleHappyPath(t *testing.T) {
	db := openTestDB(t)
	schema := DefaultSchema()
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)
	reviewer := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, schema, manager, CreateOpts{
		Title: "Launch checklist", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	started, err := Transition(db, schema, employee, created.ID, models.StatusInProgress)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.StartedAt == nil {
		t.Fatal("started_at not set on in_progress")
	}
	firstStart := *started.StartedAt

	// No reviewer on record yet: review submission must be refused.
	if _, err := Transition(db, schema, employee, created.ID, models.StatusPendingReview); !errors.Is(err, ErrReviewerRequired) {
		t.Fatalf("expected ErrReviewerRequired, got %v", err)
	}

	setReviewer(t, db, created.ID, reviewer.ID)
	pending, err := Transition(db, schema, employee, created.ID, models.StatusPendingReview)
	if err != nil {
		t.Fatalf("submit for review: %v", err)
	}
	if pending.Status != models.StatusPendingReview {
		t.Fatalf("status = %q, want pending_review", pending.Status)
	}

	done, err := Transition(db, schema, reviewer, created.ID, models.StatusDone)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if done.CompletedAt == nil || done.ReviewedAt == nil {
		t.Error("completed_at and reviewed_at must both be set on done")
	}
	if done.StartedAt == nil || !done.StartedAt.Equal(firstStart) {
		t.Error("started_at must keep its first value")
	}

	entries, err := ListActivity(db, created.ID)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	// assignment + three status changes, newest first.
	if len(entries) != 4 {
		t.Fatalf("activity entries = %d, want 4", len(entries))
	}
	latest := entries[0]
	if latest.Action != models.ActionStatusChange ||
		latest.FromStatus == nil || *latest.FromStatus != string(models.StatusPendingReview) ||
		latest.ToStatus == nil || *latest.ToStatus != string(models.StatusDone) {
		t.Errorf("latest entry = %+v, want pending_review -> done", latest)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	schema := DefaultSchema()
	manager := seedProfile(t, db, models.RoleManager)

	created, err := Create(db, schema, manager, CreateOpts{Title: "Typo target"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Transition(db, schema, manager, created.ID, "finished"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	// pending_review does not exist in the simple variant.
	simple := Schema{Variant: VariantSimple}
	if _, err := Transition(db, simple, manager, created.ID, models.StatusPendingReview); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus under simple variant, got %v", err)
	}
}

func TestTransitionNonAssigneeForbidden(t *testing.T) {
	db := openTestDB(t)
	schema := DefaultSchema()
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)
	bystander := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, schema, manager, CreateOpts{
		Title: "Guarded", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Transition(db, schema, bystander, created.ID, models.StatusInProgress); !errors.Is(err, ErrForbiddenTransition) {
		t.Fatalf("expected ErrForbiddenTransition, got %v", err)
	}
}

func TestTransitionManagerOverride(t *testing.T) {
	db := openTestDB(t)
	schema := DefaultSchema()
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, schema, manager, CreateOpts{
		Title: "Forced", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// A manager may close directly without review.
	done, err := Transition(db, schema, manager, created.ID, models.StatusDone)
	if err != nil {
		t.Fatalf("manager close: %v", err)
	}
	if done.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if done.StartedAt == nil {
		t.Error("started_at not backfilled on direct close")
	}
}

func TestDirectCloseBackfillsStartedAt(t *testing.T) {
	db := openTestDB(t)
	schema := DefaultSchema()
	manager := seedProfile(t, db, models.RoleManager)

	created, err := Create(db, schema, manager, CreateOpts{Title: "Stale"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.StatusBacklog {
		t.Fatalf("status = %q, want backlog", created.Status)
	}

	done, err := Transition(db, schema, manager, created.ID, models.StatusDone)
	if err != nil {
		t.Fatalf("close from backlog: %v", err)
	}
	if done.StartedAt == nil {
		t.Fatal("started_at = nil after closing from backlog")
	}
	if done.CompletedAt == nil {
		t.Fatal("completed_at = nil after closing from backlog")
	}
	if done.CompletedAt.Before(*done.StartedAt) {
		t.Errorf("completed_at %v before started_at %v", done.CompletedAt, done.StartedAt)
	}
}

func TestAssistantManagerOverridesButCannotDelete(t *testing.T) {
	db := openTestDB(t)
	schema := Schema{Variant: VariantFull, ExtendedRoles: true}
	manager := seedProfile(t, db, models.RoleManager)
	assistant := seedProfile(t, db, models.RoleAssistantManager)
	employee := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, schema, manager, CreateOpts{
		Title: "Escalated", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Transition(db, schema, assistant, created.ID, models.StatusBlocked); err != nil {
		t.Fatalf("assistant override: %v", err)
	}
	if err := Delete(db, assistant, created.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for assistant delete, got %v", err)
	}
}

func TestReviewReturnSetsReviewedAt(t *testing.T) {
	db := openTestDB(t)
	schema := DefaultSchema()
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)
	reviewer := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, schema, manager, CreateOpts{
		Title: "Needs rework", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	setReviewer(t, db, created.ID, reviewer.ID)
	if _, err := Transition(db, schema, employee, created.ID, models.StatusInProgress); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := Transition(db, schema, employee, created.ID, models.StatusPendingReview); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The assignee cannot resolve their own review.
	if _, err := Transition(db, schema, employee, created.ID, models.StatusDone); !errors.Is(err, ErrForbiddenTransition) {
		t.Fatalf("expected ErrForbiddenTransition for assignee close, got %v", err)
	}

	returned, err := Transition(db, schema, reviewer, created.ID, models.StatusInProgress)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.ReviewedAt == nil {
		t.Error("reviewed_at not set on return from review")
	}
	if returned.CompletedAt != nil {
		t.Error("completed_at must stay unset on return")
	}
}

func TestSimpleVariantAssigneeCloses(t *testing.T) {
	db := openTestDB(t)
	schema := Schema{Variant: VariantSimple}
	employee := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, schema, employee, CreateOpts{
		Title: "Quick fix", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	done, err := Transition(db, schema, employee, created.ID, models.StatusDone)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if done.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if done.ReviewedAt != nil {
		t.Error("reviewed_at must stay unset without a review step")
	}
}

func TestChangePriority(t *testing.T) {
	db := openTestDB(t)
	schema := DefaultSchema()
	manager := seedProfile(t, db, models.RoleManager)
	employee := seedProfile(t, db, models.RoleEmployee)
	bystander := seedProfile(t, db, models.RoleEmployee)

	created, err := Create(db, schema, manager, CreateOpts{
		Title: "Reprioritize", AssigneeID: employee.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := ChangePriority(db, schema, bystander, created.ID, models.PriorityHigh); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := ChangePriority(db, schema, employee, created.ID, models.PriorityCritical); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for gated critical, got %v", err)
	}

	updated, err := ChangePriority(db, schema, employee, created.ID, models.PriorityHigh)
	if err != nil {
		t.Fatalf("change priority: %v", err)
	}
	if updated.Priority != models.PriorityHigh {
		t.Errorf("priority = %q, want high", updated.Priority)
	}

	entries, err := ListActivity(db, created.ID)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	latest := entries[0]
	if latest.Action != models.ActionPriorityChange ||
		latest.FromStatus == nil || *latest.FromStatus != "medium" ||
		latest.ToStatus == nil || *latest.ToStatus != "high" {
		t.Errorf("latest entry = %+v, want medium -> high priority change", latest)
	}
}

func TestArabicMessages(t *testing.T) {
	if msg := ArabicMessage(ErrReviewerRequired); msg != "يجب تعيين مراجع للمهمة أولاً" {
		t.Errorf("unexpected reviewer message %q", msg)
	}
	if msg := ArabicMessage(errors.New("plain")); msg != "" {
		t.Errorf("expected empty message for foreign error, got %q", msg)
	}
}
