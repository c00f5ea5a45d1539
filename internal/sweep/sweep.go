// Package sweep sends due-date reminders on a cron schedule: one pass over
// open tasks flags everything due soon or overdue.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notification types written by the sweep.
const (
	TypeDueSoon = "task_due_soon"
	TypeOverdue = "task_overdue"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Sweeper runs the due-date reminder pass.
type Sweeper struct {
	db          *gorm.DB
	cronExpr    string
	dueSoonDays int
}

// Opts holds parameters for creating a Sweeper.
type Opts struct {
	DB          *gorm.DB
	Cron        string // 5-field cron expression, e.g. "0 8 * * *"
	DueSoonDays int    // how many days ahead counts as "due soon"
}

// New creates a Sweeper.
func New(opts Opts) (*Sweeper, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("sweep: db is required")
	}
	if opts.Cron == "" {
		opts.Cron = "0 8 * * *"
	}
	if _, err := cronParser.Parse(opts.Cron); err != nil {
		return nil, fmt.Errorf("sweep: parse cron %q: %w", opts.Cron, err)
	}
	days := opts.DueSoonDays
	if days <= 0 {
		days = 2
	}
	return &Sweeper{db: opts.DB, cronExpr: opts.Cron, dueSoonDays: days}, nil
}

// Run fires the sweep on its cron schedule until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	for {
		d := s.nextFire()
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			count, err := s.Sweep(time.Now())
			if err != nil {
				logrus.WithError(err).Warn("sweep failed")
				continue
			}
			logrus.WithField("notifications", count).Info("sweep complete")
		}
	}
}

// nextFire returns the duration until the next scheduled sweep.
func (s *Sweeper) nextFire() time.Duration {
	sched, err := cronParser.Parse(s.cronExpr)
	if err != nil {
		return time.Hour
	}
	d := time.Until(sched.Next(time.Now()))
	if d < 0 {
		return 0
	}
	return d
}

// Sweep runs one reminder pass as of now. Each task gets at most one
// reminder of each kind per day, to whoever is responsible for it: the
// assignee when there is one, otherwise the creator.
func (s *Sweeper) Sweep(now time.Time) (int, error) {
	soonCutoff := now.AddDate(0, 0, s.dueSoonDays)

	var tasks []models.Task
	if err := s.db.
		Where("due_date IS NOT NULL AND due_date <= ? AND status != ?", soonCutoff, models.StatusDone).
		Find(&tasks).Error; err != nil {
		return 0, fmt.Errorf("sweep: load due tasks: %w", err)
	}

	count := 0
	for _, t := range tasks {
		userID := t.AssigneeID
		if userID == nil {
			userID = t.CreatedBy
		}
		if userID == nil {
			continue
		}

		kind := TypeDueSoon
		title := "مهمة تستحق قريباً"
		content := fmt.Sprintf("المهمة «%s» تستحق في %s", t.Title, t.DueDate.Format("2006-01-02"))
		if t.DueDate.Before(now) {
			kind = TypeOverdue
			title = "مهمة متأخرة"
			content = fmt.Sprintf("المهمة «%s» تجاوزت موعد استحقاقها", t.Title)
		}

		sent, err := s.alreadySentToday(t.ID, *userID, kind, now)
		if err != nil {
			return count, err
		}
		if sent {
			continue
		}

		n := models.Notification{
			ID:      uuid.NewString(),
			UserID:  *userID,
			Type:    kind,
			Title:   title,
			Content: content,
			Link:    "/tasks/" + t.ID,
		}
		if err := s.db.Create(&n).Error; err != nil {
			return count, fmt.Errorf("sweep: create notification: %w", err)
		}
		count++
	}
	return count, nil
}

// alreadySentToday reports whether an equivalent reminder went out since
// midnight. The task link is the dedup key.
func (s *Sweeper) alreadySentToday(taskID, userID, kind string, now time.Time) (bool, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var n int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND link = ? AND created_at >= ?",
			userID, kind, "/tasks/"+taskID, midnight).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("sweep: dedup check: %w", err)
	}
	return n > 0, nil
}
