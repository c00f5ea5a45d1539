package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultPollInterval is the watcher cycle time.
const DefaultPollInterval = 15 * time.Second

// Notification types written by the watcher.
const (
	TypeTaskAssigned    = "task_assigned"
	TypeReviewRequested = "review_requested"
	TypeTaskApproved    = "task_approved"
	TypeTaskReturned    = "task_returned"
	TypeTaskBlocked     = "task_blocked"
)

// Watcher tails the task activity log and fans each new entry out as
// in-app notifications, plus an optional chat message. The first poll
// only establishes a baseline so restarts do not replay old activity.
type Watcher struct {
	db       *gorm.DB
	sender   *Sender // nil disables chat delivery
	channel  string
	interval time.Duration

	mu         sync.Mutex
	lastSeenID uint
	seeded     bool
}

// WatcherOpts holds parameters for creating a Watcher.
type WatcherOpts struct {
	DB           *gorm.DB
	Sender       *Sender       // optional
	Channel      string        // chat channel for Sender
	PollInterval time.Duration // defaults to DefaultPollInterval
}

// NewWatcher creates a Watcher.
func NewWatcher(opts WatcherOpts) (*Watcher, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("notify: watcher: db is required")
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		db:       opts.DB,
		sender:   opts.Sender,
		channel:  opts.Channel,
		interval: interval,
	}, nil
}

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				logrus.WithError(err).Warn("notify poll failed")
			}
		}
	}
}

// Poll runs one cycle and returns the notifications it created.
func (w *Watcher) Poll(ctx context.Context) ([]models.Notification, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.seeded {
		var latest models.TaskActivity
		err := w.db.Order("id DESC").Limit(1).First(&latest).Error
		if err == nil {
			w.lastSeenID = latest.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notify: seed baseline: %w", err)
		}
		w.seeded = true
		return nil, nil
	}

	var entries []models.TaskActivity
	if err := w.db.Where("id > ?", w.lastSeenID).
		Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("notify: poll activity: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	w.lastSeenID = entries[len(entries)-1].ID

	var created []models.Notification
	for _, entry := range entries {
		notifications, err := w.fanOut(entry)
		if err != nil {
			logrus.WithError(err).WithField("activity_id", entry.ID).Warn("notify fan-out failed")
			continue
		}
		created = append(created, notifications...)
	}

	if w.sender != nil {
		for _, entry := range entries {
			if err := w.sender.Send(ctx, w.chatMessage(entry)); err != nil {
				logrus.WithError(err).Warn("chat delivery failed")
			}
		}
	}

	return created, nil
}

// fanOut converts one activity entry into notification rows. The actor who
// made the change never gets notified about it.
func (w *Watcher) fanOut(entry models.TaskActivity) ([]models.Notification, error) {
	var t models.Task
	if err := w.db.Where("id = ?", entry.TaskID).First(&t).Error; err != nil {
		return nil, fmt.Errorf("load task %s: %w", entry.TaskID, err)
	}

	type target struct {
		userID  *string
		kind    string
		title   string
		content string
	}
	var targets []target

	switch entry.Action {
	case models.ActionAssignment:
		targets = append(targets, target{
			userID:  t.AssigneeID,
			kind:    TypeTaskAssigned,
			title:   "مهمة جديدة",
			content: fmt.Sprintf("تم إسناد المهمة «%s» إليك", t.Title),
		})
	case models.ActionStatusChange:
		to := ""
		if entry.ToStatus != nil {
			to = *entry.ToStatus
		}
		from := ""
		if entry.FromStatus != nil {
			from = *entry.FromStatus
		}
		switch {
		case to == string(models.StatusPendingReview):
			targets = append(targets, target{
				userID:  t.ReviewerID,
				kind:    TypeReviewRequested,
				title:   "طلب مراجعة",
				content: fmt.Sprintf("المهمة «%s» بانتظار مراجعتك", t.Title),
			})
		case to == string(models.StatusDone):
			targets = append(targets, target{
				userID:  t.AssigneeID,
				kind:    TypeTaskApproved,
				title:   "تم اعتماد المهمة",
				content: fmt.Sprintf("تم اعتماد المهمة «%s»", t.Title),
			})
		case to == string(models.StatusInProgress) && from == string(models.StatusPendingReview):
			targets = append(targets, target{
				userID:  t.AssigneeID,
				kind:    TypeTaskReturned,
				title:   "أُعيدت المهمة",
				content: fmt.Sprintf("أُعيدت المهمة «%s» للتعديل", t.Title),
			})
		case to == string(models.StatusBlocked):
			targets = append(targets, target{
				userID:  t.CreatedBy,
				kind:    TypeTaskBlocked,
				title:   "مهمة متعثرة",
				content: fmt.Sprintf("المهمة «%s» متعثرة", t.Title),
			})
		}
	}

	var created []models.Notification
	for _, tgt := range targets {
		if tgt.userID == nil {
			continue
		}
		if entry.ActorID != nil && *entry.ActorID == *tgt.userID {
			continue
		}
		n := models.Notification{
			ID:      uuid.NewString(),
			UserID:  *tgt.userID,
			Type:    tgt.kind,
			Title:   tgt.title,
			Content: tgt.content,
			Link:    "/tasks/" + t.ID,
		}
		if err := w.db.Create(&n).Error; err != nil {
			return created, fmt.Errorf("create notification: %w", err)
		}
		created = append(created, n)
	}
	return created, nil
}

// chatMessage formats an activity entry for chat delivery.
func (w *Watcher) chatMessage(entry models.TaskActivity) Message {
	var t models.Task
	title := entry.TaskID
	if err := w.db.Where("id = ?", entry.TaskID).First(&t).Error; err == nil {
		title = t.Title
	}

	msg := Message{
		ChannelID: w.channel,
		Title:     fmt.Sprintf("Task update: %s", title),
		Color:     "#36a64f",
		Fields: []Field{
			{Name: "Action", Value: entry.Action, Short: true},
			{Name: "Task", Value: entry.TaskID, Short: true},
		},
	}
	if entry.FromStatus != nil && entry.ToStatus != nil {
		msg.Body = fmt.Sprintf("%s → %s", *entry.FromStatus, *entry.ToStatus)
	} else if entry.ToStatus != nil {
		msg.Body = *entry.ToStatus
	}
	return msg
}
