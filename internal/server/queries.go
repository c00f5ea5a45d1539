package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

// summaryReport is the payload of /api/reports/summary.
type summaryReport struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"by_status"`
	ByPriority    map[string]int64 `json:"by_priority"`
	ByAssignee    []assigneeLoad   `json:"by_assignee"`
	Overdue       int64            `json:"overdue"`
	DueThisWeek   int64            `json:"due_this_week"`
	DoneThisWeek  int64            `json:"done_this_week"`
	PendingReview int64            `json:"pending_review"`
}

// assigneeLoad is one row of the per-assignee workload breakdown.
type assigneeLoad struct {
	AssigneeID string `json:"assignee_id"`
	FullName   string `json:"full_name"`
	Open       int64  `json:"open"`
	Done       int64  `json:"done"`
}

func handleReportSummary(db *gorm.DB, schema task.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := buildSummary(db, schema)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func buildSummary(db *gorm.DB, schema task.Schema) (*summaryReport, error) {
	report := summaryReport{
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
	}

	if err := db.Model(&models.Task{}).Count(&report.Total).Error; err != nil {
		return nil, fmt.Errorf("server: count tasks: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var statusBuckets []bucket
	if err := db.Model(&models.Task{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").Scan(&statusBuckets).Error; err != nil {
		return nil, fmt.Errorf("server: count by status: %w", err)
	}
	for _, b := range statusBuckets {
		report.ByStatus[b.Key] = b.Count
	}
	// Every schema status shows up, even at zero.
	for _, st := range schema.Statuses() {
		if _, ok := report.ByStatus[string(st)]; !ok {
			report.ByStatus[string(st)] = 0
		}
	}
	report.PendingReview = report.ByStatus[string(models.StatusPendingReview)]

	var priorityBuckets []bucket
	if err := db.Model(&models.Task{}).
		Select("priority AS key, COUNT(*) AS count").
		Group("priority").Scan(&priorityBuckets).Error; err != nil {
		return nil, fmt.Errorf("server: count by priority: %w", err)
	}
	for _, b := range priorityBuckets {
		report.ByPriority[b.Key] = b.Count
	}

	now := time.Now()
	weekAhead := now.AddDate(0, 0, 7)
	weekAgo := now.AddDate(0, 0, -7)

	if err := db.Model(&models.Task{}).
		Where("due_date < ? AND status NOT IN ?", now, []string{string(models.StatusDone)}).
		Count(&report.Overdue).Error; err != nil {
		return nil, fmt.Errorf("server: count overdue: %w", err)
	}
	if err := db.Model(&models.Task{}).
		Where("due_date BETWEEN ? AND ? AND status NOT IN ?", now, weekAhead, []string{string(models.StatusDone)}).
		Count(&report.DueThisWeek).Error; err != nil {
		return nil, fmt.Errorf("server: count due this week: %w", err)
	}
	if err := db.Model(&models.Task{}).
		Where("status = ? AND completed_at >= ?", models.StatusDone, weekAgo).
		Count(&report.DoneThisWeek).Error; err != nil {
		return nil, fmt.Errorf("server: count done this week: %w", err)
	}

	var loads []assigneeLoad
	if err := db.Model(&models.Task{}).
		Select(`tasks.assignee_id AS assignee_id,
			profiles.full_name AS full_name,
			SUM(CASE WHEN tasks.status != 'done' THEN 1 ELSE 0 END) AS open,
			SUM(CASE WHEN tasks.status = 'done' THEN 1 ELSE 0 END) AS done`).
		Joins("JOIN profiles ON profiles.id = tasks.assignee_id").
		Where("tasks.assignee_id IS NOT NULL").
		Group("tasks.assignee_id, profiles.full_name").
		Order("open DESC").
		Scan(&loads).Error; err != nil {
		return nil, fmt.Errorf("server: assignee workload: %w", err)
	}
	report.ByAssignee = loads

	return &report, nil
}
