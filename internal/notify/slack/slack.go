// Package slack implements the notify Adapter for Slack using the Web API.
package slack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nbukhari/diwan/internal/notify"
	slackapi "github.com/slack-go/slack"
)

const (
	// maxRetries is the max number of retries for rate-limited API calls.
	maxRetries = 3
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	AuthTestContext(ctx context.Context) (*slackapi.AuthTestResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Adapter implements notify.Adapter for the Slack Web API. Diwan only
// posts messages, so there is no Socket Mode connection to maintain.
type Adapter struct {
	client    slackClient
	botToken  string
	channelID string
	mu        sync.Mutex
	connected bool
	closed    bool
}

// AdapterOpts holds parameters for creating a Slack Adapter.
type AdapterOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	a := &Adapter{
		botToken:  opts.BotToken,
		channelID: opts.ChannelID,
	}
	if opts.Client != nil {
		a.client = opts.Client
	}
	return a, nil
}

// Connect verifies the token with an auth test.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("slack: adapter already closed")
	}
	if a.connected {
		return nil
	}
	if a.client == nil {
		a.client = slackapi.New(a.botToken)
	}
	if _, err := a.client.AuthTestContext(ctx); err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}
	a.connected = true
	return nil
}

// Send posts the message as a Slack attachment, retrying on rate limits.
func (a *Adapter) Send(ctx context.Context, msg notify.Message) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return fmt.Errorf("slack: adapter closed")
	}
	client := a.client
	channel := msg.ChannelID
	if channel == "" {
		channel = a.channelID
	}
	a.mu.Unlock()

	if client == nil {
		return fmt.Errorf("slack: not connected")
	}
	if channel == "" {
		return fmt.Errorf("slack: no channel configured")
	}

	attachment := slackapi.Attachment{
		Title: msg.Title,
		Text:  msg.Body,
		Color: msg.Color,
	}
	for _, f := range msg.Fields {
		attachment.Fields = append(attachment.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		_, _, err := client.PostMessageContext(ctx, channel,
			slackapi.MsgOptionAttachments(attachment))
		if err == nil {
			return nil
		}
		lastErr = err
		var rateErr *slackapi.RateLimitedError
		if errors.As(err, &rateErr) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(rateErr.RetryAfter):
			}
			continue
		}
		break
	}
	return fmt.Errorf("slack: post message: %w", lastErr)
}

// Close marks the adapter closed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.connected = false
	return nil
}
