package discord

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/nbukhari/diwan/internal/notify"
)

// mockSession records embed sends.
type mockSession struct {
	mu       sync.Mutex
	embeds   []*discordgo.MessageEmbed
	channels []string
	openErr  error
}

func (m *mockSession) Open() error  { return m.openErr }
func (m *mockSession) Close() error { return nil }
func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, channelID)
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{ID: "1"}, nil
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(AdapterOpts{}); err == nil {
		t.Fatal("expected error without token or session")
	}
}

func TestSendEmbed(t *testing.T) {
	ms := &mockSession{}
	a, err := New(AdapterOpts{Session: ms, ChannelID: "800"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	err = a.Send(context.Background(), notify.Message{
		Title: "Task update",
		Body:  "in_progress",
		Color: "#1f6feb",
		Fields: []notify.Field{
			{Name: "Action", Value: "status_change", Short: true},
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(ms.embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(ms.embeds))
	}
	embed := ms.embeds[0]
	if embed.Title != "Task update" || embed.Color != 0x1f6feb {
		t.Errorf("embed = %+v", embed)
	}
	if ms.channels[0] != "800" {
		t.Errorf("channel = %q, want default", ms.channels[0])
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"#000000", 0},
		{"bogus", 0x36a64f},
		{"", 0x36a64f},
	}
	for _, tc := range cases {
		if got := parseColor(tc.in); got != tc.want {
			t.Errorf("parseColor(%q) = %#x, want %#x", tc.in, got, tc.want)
		}
	}
}
