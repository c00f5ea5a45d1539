package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

// NotificationTypeMessage marks notification rows that point at a direct
// message; marking the message read also clears them.
const NotificationTypeMessage = "message"

func messageLink(id string) string {
	return "/messages?msg=" + id
}

// handleMessageList returns the caller's inbox, or their outbox with
// ?box=outbox.
func handleMessageList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		q := db.Where("receiver_id = ?", actor.ID)
		if c.Query("box") == "outbox" {
			q = db.Where("sender_id = ?", actor.ID)
		}
		var messages []models.Message
		if err := q.Order("created_at DESC").Find(&messages).Error; err != nil {
			fail(c, fmt.Errorf("server: list messages: %w", err))
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

func handleMessageSend(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var req struct {
			ReceiverID string `json:"receiver_id"`
			Subject    string `json:"subject"`
			Body       string `json:"body"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.ReceiverID == "" || req.Subject == "" || req.Body == "" {
			fail(c, fmt.Errorf("%w: receiver_id, subject and body are required", task.ErrValidation))
			return
		}
		var receiver models.Profile
		if err := db.First(&receiver, "id = ?", req.ReceiverID).Error; err != nil {
			fail(c, fmt.Errorf("%w: profile %s", task.ErrNotFound, req.ReceiverID))
			return
		}

		message := models.Message{
			ID:         uuid.NewString(),
			SenderID:   actor.ID,
			ReceiverID: req.ReceiverID,
			Subject:    req.Subject,
			Body:       req.Body,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&message).Error; err != nil {
				return err
			}
			return tx.Create(&models.Notification{
				ID:      uuid.NewString(),
				UserID:  req.ReceiverID,
				Type:    NotificationTypeMessage,
				Title:   "رسالة جديدة",
				Content: req.Subject,
				Link:    messageLink(message.ID),
			}).Error
		})
		if err != nil {
			fail(c, fmt.Errorf("server: send message: %w", err))
			return
		}
		c.JSON(http.StatusCreated, message)
	}
}

// handleMessageRead marks a received message read and clears the
// notification that announced it. Receiver only; anyone else sees 404.
func handleMessageRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Message{}).
				Where("id = ? AND receiver_id = ?", c.Param("id"), actor.ID).
				Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
			if res.Error != nil {
				return fmt.Errorf("server: mark message read: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: message %s", task.ErrNotFound, c.Param("id"))
			}
			return tx.Model(&models.Notification{}).
				Where("user_id = ? AND type = ? AND link = ?",
					actor.ID, NotificationTypeMessage, messageLink(c.Param("id"))).
				Update("read", true).Error
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleMessageDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := mustActor(c)
		if !ok {
			return
		}
		var message models.Message
		if err := db.First(&message, "id = ?", c.Param("id")).Error; err != nil {
			fail(c, fmt.Errorf("%w: message %s", task.ErrNotFound, c.Param("id")))
			return
		}
		if message.SenderID != actor.ID && message.ReceiverID != actor.ID {
			fail(c, fmt.Errorf("%w: only a participant may delete a message", task.ErrUnauthorized))
			return
		}
		if err := db.Delete(&message).Error; err != nil {
			fail(c, fmt.Errorf("server: delete message: %w", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
