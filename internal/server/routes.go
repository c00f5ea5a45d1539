package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/assignment"
	"github.com/nbukhari/diwan/internal/auth"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

// NewRouter builds the API router. Everything under /api requires a valid
// bearer token; /healthz is open.
func NewRouter(db *gorm.DB, schema task.Schema, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", handleHealth(db))

	api := router.Group("/api")
	api.Use(auth.Middleware(db, jwtSecret))
	{
		api.GET("/tasks", handleTaskList(db))
		api.POST("/tasks", handleTaskCreate(db, schema))
		api.GET("/tasks/:id", handleTaskGet(db))
		api.PATCH("/tasks/:id", handleTaskUpdate(db))
		api.DELETE("/tasks/:id", handleTaskDelete(db))
		api.POST("/tasks/:id/status", handleTaskStatus(db, schema))
		api.POST("/tasks/:id/priority", handleTaskPriority(db, schema))
		api.POST("/tasks/:id/claim", handleTaskClaim(db, schema))
		api.POST("/tasks/:id/assignee", handleTaskAssign(db, schema))
		api.GET("/tasks/:id/reviewer", handleReviewerGet(db))
		api.PUT("/tasks/:id/reviewer", handleReviewerSet(db))
		api.DELETE("/tasks/:id/reviewer", handleReviewerClear(db))
		api.GET("/tasks/:id/activity", handleTaskActivity(db))
		api.GET("/tasks/:id/subtasks", handleTaskSubtasks(db))
		api.GET("/tasks/:id/comments", handleCommentList(db))
		api.POST("/tasks/:id/comments", handleCommentCreate(db))
		api.DELETE("/comments/:id", handleCommentDelete(db))
		api.GET("/tasks/:id/attachments", handleAttachmentList(db))
		api.POST("/tasks/:id/attachments", handleAttachmentCreate(db))
		api.DELETE("/attachments/:id", handleAttachmentDelete(db))

		api.GET("/messages", handleMessageList(db))
		api.POST("/messages", handleMessageSend(db))
		api.POST("/messages/:id/read", handleMessageRead(db))
		api.DELETE("/messages/:id", handleMessageDelete(db))

		api.GET("/profiles", handleProfileList(db))
		api.POST("/profiles", handleProfileCreate(db, schema))
		api.DELETE("/profiles/:id", handleProfileDelete(db))

		api.GET("/projects", handleProjectList(db))
		api.POST("/projects", handleProjectCreate(db))
		api.GET("/projects/:id/sections", handleSectionList(db))
		api.POST("/projects/:id/sections", handleSectionCreate(db))

		api.GET("/companies", listAll[models.Company](db, "name ASC"))
		api.POST("/companies", handleCompanyCreate(db))
		api.GET("/task-types", listAll[models.TaskType](db, "name ASC"))
		api.POST("/task-types", handleTaskTypeCreate(db))

		api.GET("/notifications", handleNotificationList(db))
		api.POST("/notifications/:id/read", handleNotificationRead(db))
		api.POST("/notifications/read-all", handleNotificationReadAll(db))

		api.GET("/reports/summary", handleReportSummary(db, schema))
		api.GET("/events", handleSSE(db))
	}

	return router
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func mustActor(c *gin.Context) (task.Actor, bool) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth: no actor"})
	}
	return actor, ok
}

func handleTaskList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := task.ListFilters{
			Status:       models.TaskStatus(c.Query("status")),
			AssigneeID:   c.Query("assignee_id"),
			CreatedBy:    c.Query("created_by"),
			ProjectID:    c.Query("project_id"),
			SectionID:    c.Query("section_id"),
			ParentTaskID: c.Query("parent_task_id"),
			Unassigned:   c.Query("unassigned") == "true",
		}
		tasks, err := task.List(db, filters)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

type taskCreateRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	AssigneeID     string     `json:"assignee_id"`
	CompanyID      string     `json:"company_id"`
	TaskTypeID     string     `json:"task_type_id"`
	ProjectID      string     `json:"project_id"`
	SectionID      string     `json:"section_id"`
	ParentTaskID   string     `json:"parent_task_id"`
	EstimatedHours *float64   `json:"estimated_hours"`
	Position       int        `json:"position"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
}

func handleTaskCreate(db *gorm.DB, schema task.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var req taskCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		created, err := task.Create(db, schema, actor, task.CreateOpts{
			Title:          req.Title,
			Description:    req.Description,
			Priority:       models.TaskPriority(req.Priority),
			AssigneeID:     req.AssigneeID,
			CompanyID:      req.CompanyID,
			TaskTypeID:     req.TaskTypeID,
			ProjectID:      req.ProjectID,
			SectionID:      req.SectionID,
			ParentTaskID:   req.ParentTaskID,
			EstimatedHours: req.EstimatedHours,
			Position:       req.Position,
			StartDate:      req.StartDate,
			DueDate:        req.DueDate,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleTaskGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := task.Get(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

type taskUpdateRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	SectionID      *string    `json:"section_id"`
	Position       *int       `json:"position"`
}

func handleTaskUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var req taskUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		updated, err := task.UpdateFields(db, actor, c.Param("id"), task.UpdateOpts{
			Title:          req.Title,
			Description:    req.Description,
			StartDate:      req.StartDate,
			DueDate:        req.DueDate,
			EstimatedHours: req.EstimatedHours,
			ActualHours:    req.ActualHours,
			SectionID:      req.SectionID,
			Position:       req.Position,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func handleTaskDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if err := task.Delete(db, actor, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleTaskStatus(db *gorm.DB, schema task.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		updated, err := task.Transition(db, schema, actor, c.Param("id"), models.TaskStatus(req.Status))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func handleTaskPriority(db *gorm.DB, schema task.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var req struct {
			Priority string `json:"priority"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		updated, err := task.ChangePriority(db, schema, actor, c.Param("id"), models.TaskPriority(req.Priority))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func handleTaskClaim(db *gorm.DB, schema task.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		claimed, err := assignment.Claim(db, schema, actor, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, claimed)
	}
}

func handleTaskAssign(db *gorm.DB, schema task.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		updated, err := assignment.Assign(db, schema, actor, c.Param("id"), req.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func handleReviewerGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewer, err := assignment.Reviewer(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviewer": reviewer})
	}
}

func handleReviewerSet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var req struct {
			ReviewerID string `json:"reviewer_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.ReviewerID == "" {
			badRequest(c, fmt.Errorf("reviewer_id is required"))
			return
		}
		if err := assignment.SetReviewer(db, actor, c.Param("id"), req.ReviewerID); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleReviewerClear(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if err := assignment.ClearReviewer(db, actor, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleTaskActivity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := task.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		entries, err := task.ListActivity(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func handleTaskSubtasks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := task.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		subtasks, err := task.List(db, task.ListFilters{ParentTaskID: c.Param("id")})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, subtasks)
	}
}

func handleCommentList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := task.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		var comments []models.TaskComment
		if err := db.Where("task_id = ?", c.Param("id")).
			Order("created_at ASC").Find(&comments).Error; err != nil {
			fail(c, fmt.Errorf("server: list comments: %w", err))
			return
		}
		c.JSON(http.StatusOK, comments)
	}
}

func handleCommentCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if _, err := task.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Content == "" {
			fail(c, fmt.Errorf("%w: comment content is required", task.ErrValidation))
			return
		}
		comment := models.TaskComment{
			ID:      uuid.NewString(),
			TaskID:  c.Param("id"),
			UserID:  &actor.ID,
			Content: req.Content,
		}
		if err := db.Create(&comment).Error; err != nil {
			fail(c, fmt.Errorf("server: create comment: %w", err))
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

func handleCommentDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var comment models.TaskComment
		if err := db.First(&comment, "id = ?", c.Param("id")).Error; err != nil {
			fail(c, fmt.Errorf("%w: comment %s", task.ErrNotFound, c.Param("id")))
			return
		}
		isAuthor := comment.UserID != nil && *comment.UserID == actor.ID
		if !isAuthor && !actor.IsManager() {
			fail(c, fmt.Errorf("%w: only the author or a manager may delete a comment", task.ErrUnauthorized))
			return
		}
		if err := db.Delete(&comment).Error; err != nil {
			fail(c, fmt.Errorf("server: delete comment: %w", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleAttachmentList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := task.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		var attachments []models.TaskAttachment
		if err := db.Where("task_id = ?", c.Param("id")).
			Order("created_at DESC").Find(&attachments).Error; err != nil {
			fail(c, fmt.Errorf("server: list attachments: %w", err))
			return
		}
		c.JSON(http.StatusOK, attachments)
	}
}

// handleAttachmentCreate records attachment metadata. The file itself lives
// in external object storage; the API only keeps the reference.
func handleAttachmentCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if _, err := task.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		var req struct {
			FileName string  `json:"file_name"`
			FileURL  string  `json:"file_url"`
			FileSize *int64  `json:"file_size"`
			FileType *string `json:"file_type"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.FileName == "" || req.FileURL == "" {
			fail(c, fmt.Errorf("%w: file_name and file_url are required", task.ErrValidation))
			return
		}
		attachment := models.TaskAttachment{
			ID:         uuid.NewString(),
			TaskID:     c.Param("id"),
			FileName:   req.FileName,
			FileURL:    req.FileURL,
			FileSize:   req.FileSize,
			FileType:   req.FileType,
			UploadedBy: &actor.ID,
		}
		if err := db.Create(&attachment).Error; err != nil {
			fail(c, fmt.Errorf("server: create attachment: %w", err))
			return
		}
		c.JSON(http.StatusCreated, attachment)
	}
}

func handleAttachmentDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var attachment models.TaskAttachment
		if err := db.First(&attachment, "id = ?", c.Param("id")).Error; err != nil {
			fail(c, fmt.Errorf("%w: attachment %s", task.ErrNotFound, c.Param("id")))
			return
		}
		isUploader := attachment.UploadedBy != nil && *attachment.UploadedBy == actor.ID
		if !isUploader && !actor.IsManager() {
			fail(c, fmt.Errorf("%w: only the uploader or a manager may delete an attachment", task.ErrUnauthorized))
			return
		}
		if err := db.Delete(&attachment).Error; err != nil {
			fail(c, fmt.Errorf("server: delete attachment: %w", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleProfileList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var profiles []models.Profile
		if err := db.Order("full_name ASC").Find(&profiles).Error; err != nil {
			fail(c, fmt.Errorf("server: list profiles: %w", err))
			return
		}
		c.JSON(http.StatusOK, profiles)
	}
}

func handleProfileCreate(db *gorm.DB, schema task.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if !actor.IsManager() {
			fail(c, fmt.Errorf("%w: only a manager may add users", task.ErrUnauthorized))
			return
		}
		var req struct {
			ID       string `json:"id"`
			FullName string `json:"full_name"`
			Role     string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Role == "" {
			req.Role = string(models.RoleEmployee)
		}
		if !schema.ValidRole(models.Role(req.Role)) {
			fail(c, fmt.Errorf("%w: unknown role %q", task.ErrValidation, req.Role))
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		profile := models.Profile{ID: req.ID, FullName: req.FullName, Role: models.Role(req.Role)}
		if err := db.Create(&profile).Error; err != nil {
			fail(c, fmt.Errorf("server: create profile: %w", err))
			return
		}
		c.JSON(http.StatusCreated, profile)
	}
}

func handleProfileDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if err := assignment.RemoveUser(db, actor, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleProjectList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&models.Project{})
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		var projects []models.Project
		if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
			fail(c, fmt.Errorf("server: list projects: %w", err))
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func handleProjectCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if !actor.Supervisory() {
			fail(c, fmt.Errorf("%w: only a manager may create projects", task.ErrUnauthorized))
			return
		}
		var req struct {
			Name        string     `json:"name"`
			Description string     `json:"description"`
			CompanyID   string     `json:"company_id"`
			Color       string     `json:"color"`
			StartDate   *time.Time `json:"start_date"`
			DueDate     *time.Time `json:"due_date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Name == "" {
			fail(c, fmt.Errorf("%w: project name is required", task.ErrValidation))
			return
		}
		project := models.Project{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			OwnerID:     &actor.ID,
			Status:      models.ProjectActive,
			Color:       req.Color,
			StartDate:   req.StartDate,
			DueDate:     req.DueDate,
		}
		if req.CompanyID != "" {
			project.CompanyID = &req.CompanyID
		}
		if err := db.Create(&project).Error; err != nil {
			fail(c, fmt.Errorf("server: create project: %w", err))
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

func handleSectionList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sections []models.Section
		if err := db.Where("project_id = ?", c.Param("id")).
			Order("position ASC").Find(&sections).Error; err != nil {
			fail(c, fmt.Errorf("server: list sections: %w", err))
			return
		}
		c.JSON(http.StatusOK, sections)
	}
}

func handleSectionCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if !actor.Supervisory() {
			fail(c, fmt.Errorf("%w: only a manager may create sections", task.ErrUnauthorized))
			return
		}
		var req struct {
			Name     string `json:"name"`
			Position int    `json:"position"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Name == "" {
			fail(c, fmt.Errorf("%w: section name is required", task.ErrValidation))
			return
		}
		section := models.Section{
			ID:        uuid.NewString(),
			ProjectID: c.Param("id"),
			Name:      req.Name,
			Position:  req.Position,
		}
		if err := db.Create(&section).Error; err != nil {
			fail(c, fmt.Errorf("server: create section: %w", err))
			return
		}
		c.JSON(http.StatusCreated, section)
	}
}

// listAll returns a handler that lists every row of T in a fixed order.
func listAll[T any](db *gorm.DB, order string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []T
		if err := db.Order(order).Find(&rows).Error; err != nil {
			fail(c, fmt.Errorf("server: list: %w", err))
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func handleCompanyCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if !actor.Supervisory() {
			fail(c, fmt.Errorf("%w: only a manager may add companies", task.ErrUnauthorized))
			return
		}
		var req struct {
			Name      string `json:"name"`
			LegalName string `json:"legal_name"`
			Sector    string `json:"sector"`
			Notes     string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Name == "" {
			fail(c, fmt.Errorf("%w: company name is required", task.ErrValidation))
			return
		}
		company := models.Company{
			ID: uuid.NewString(), Name: req.Name,
			LegalName: req.LegalName, Sector: req.Sector, Notes: req.Notes,
		}
		if err := db.Create(&company).Error; err != nil {
			fail(c, fmt.Errorf("server: create company: %w", err))
			return
		}
		c.JSON(http.StatusCreated, company)
	}
}

func handleTaskTypeCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if !actor.Supervisory() {
			fail(c, fmt.Errorf("%w: only a manager may add task types", task.ErrUnauthorized))
			return
		}
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Color       string `json:"color"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Name == "" {
			fail(c, fmt.Errorf("%w: task type name is required", task.ErrValidation))
			return
		}
		tt := models.TaskType{
			ID: uuid.NewString(), Name: req.Name,
			Description: req.Description, Color: req.Color,
		}
		if err := db.Create(&tt).Error; err != nil {
			fail(c, fmt.Errorf("server: create task type: %w", err))
			return
		}
		c.JSON(http.StatusCreated, tt)
	}
}

func handleNotificationList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		q := db.Where("user_id = ?", actor.ID)
		if c.Query("unread") == "true" {
			q = q.Where("read = ?", false)
		}
		var notifications []models.Notification
		if err := q.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
			fail(c, fmt.Errorf("server: list notifications: %w", err))
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

func handleNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		res := db.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", c.Param("id"), actor.ID).
			Update("read", true)
		if res.Error != nil {
			fail(c, fmt.Errorf("server: mark notification read: %w", res.Error))
			return
		}
		if res.RowsAffected == 0 {
			fail(c, fmt.Errorf("%w: notification %s", task.ErrNotFound, c.Param("id")))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleNotificationReadAll(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND read = ?", actor.ID, false).
			Update("read", true).Error; err != nil {
			fail(c, fmt.Errorf("server: mark all read: %w", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
