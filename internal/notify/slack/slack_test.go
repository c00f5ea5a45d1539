package slack

import (
	"context"
	"sync"
	"testing"

	"github.com/nbukhari/diwan/internal/notify"
	slackapi "github.com/slack-go/slack"
)

// mockClient records PostMessage calls.
type mockClient struct {
	mu       sync.Mutex
	posted   []string // channel IDs
	authErr  error
	postErr  error
	lastOpts int
}

func (m *mockClient) AuthTestContext(ctx context.Context) (*slackapi.AuthTestResponse, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	return &slackapi.AuthTestResponse{UserID: "UBOT"}, nil
}

func (m *mockClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return "", "", m.postErr
	}
	m.posted = append(m.posted, channelID)
	m.lastOpts = len(options)
	return channelID, "123.456", nil
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(AdapterOpts{}); err == nil {
		t.Fatal("expected error without token or client")
	}
}

func TestSendUsesDefaultChannel(t *testing.T) {
	mc := &mockClient{}
	a, err := New(AdapterOpts{Client: mc, ChannelID: "CDEFAULT"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	err = a.Send(context.Background(), notify.Message{
		Title:  "Task update",
		Body:   "assigned",
		Fields: []notify.Field{{Name: "Action", Value: "assignment", Short: true}},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(mc.posted) != 1 || mc.posted[0] != "CDEFAULT" {
		t.Errorf("posted = %v, want default channel", mc.posted)
	}

	if err := a.Send(context.Background(), notify.Message{ChannelID: "COTHER", Title: "x"}); err != nil {
		t.Fatalf("send explicit: %v", err)
	}
	if mc.posted[1] != "COTHER" {
		t.Errorf("explicit channel not honored: %v", mc.posted)
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	mc := &mockClient{}
	a, err := New(AdapterOpts{Client: mc, ChannelID: "C1"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Send(context.Background(), notify.Message{Title: "x"}); err == nil {
		t.Fatal("expected error after close")
	}
}
