package server

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// activityEvent is the SSE payload pushed when the activity log grows.
type activityEvent struct {
	ID         uint    `json:"id"`
	TaskID     string  `json:"task_id"`
	ActorID    *string `json:"actor_id,omitempty"`
	Action     string  `json:"action"`
	FromStatus *string `json:"from_status,omitempty"`
	ToStatus   *string `json:"to_status,omitempty"`
}

// handleSSE streams new activity log entries and the caller's notifications
// to the dashboard. The handler polls the append-only log by ID so clients
// only ever see entries written after they connected.
func handleSSE(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		var lastSeenID uint
		var latest models.TaskActivity
		if err := db.Order("id DESC").Limit(1).First(&latest).Error; err == nil {
			lastSeenID = latest.ID
		}
		lastNotifiedAt := time.Now()

		ctx := c.Request.Context()
		ticker := time.NewTicker(3 * time.Second)
		heartbeat := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				flush := false

				var entries []models.TaskActivity
				if err := db.Where("id > ?", lastSeenID).Order("id ASC").
					Find(&entries).Error; err != nil {
					logrus.WithError(err).Warn("event stream: poll activity")
				}
				if len(entries) > 0 {
					lastSeenID = entries[len(entries)-1].ID
					for _, e := range entries {
						writeSSE(c.Writer, "activity", activityEvent{
							ID:         e.ID,
							TaskID:     e.TaskID,
							ActorID:    e.ActorID,
							Action:     e.Action,
							FromStatus: e.FromStatus,
							ToStatus:   e.ToStatus,
						})
					}
					flush = true
				}

				var notifs []models.Notification
				if err := db.Where("user_id = ? AND created_at > ?", actor.ID, lastNotifiedAt).
					Order("created_at ASC").Find(&notifs).Error; err != nil {
					logrus.WithError(err).Warn("event stream: poll notifications")
				}
				if len(notifs) > 0 {
					lastNotifiedAt = notifs[len(notifs)-1].CreatedAt
					for _, n := range notifs {
						writeSSE(c.Writer, "notification", n)
					}
					flush = true
				}

				if flush {
					c.Writer.Flush()
				}
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
