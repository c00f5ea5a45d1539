package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Sender wraps an Adapter with a circuit breaker so a dead chat platform
// cannot stall the watcher loop. When the breaker is open, sends are
// dropped with a warning; in-app notifications are unaffected.
type Sender struct {
	adapter Adapter
	breaker *gobreaker.CircuitBreaker
}

// NewSender wraps adapter with the standard breaker settings.
func NewSender(adapter Adapter) *Sender {
	settings := gobreaker.Settings{
		Name:    "notify",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("notify breaker state change")
		},
	}
	return &Sender{
		adapter: adapter,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Send delivers msg through the breaker.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return nil, s.adapter.Send(sendCtx, msg)
	})
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	return nil
}
