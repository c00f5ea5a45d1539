// Package notify turns task activity into in-app notifications and posts
// the same events to a chat platform (Slack or Discord).
package notify

import "context"

// Adapter is the outbound side of a chat platform integration. Diwan only
// posts events; it never reads messages back.
type Adapter interface {
	// Connect establishes a connection or verifies credentials.
	Connect(ctx context.Context) error

	// Send posts an event message to the platform.
	Send(ctx context.Context, msg Message) error

	// Close shuts the adapter down.
	Close() error
}

// Message is a task event formatted for chat delivery.
type Message struct {
	ChannelID string  // target channel; adapters fall back to their default
	Title     string  // event headline
	Body      string  // detail text
	Color     string  // sidebar color hint (e.g. "#36a64f")
	Fields    []Field // key-value metadata pairs
}

// Field is a key-value pair displayed alongside the message.
type Field struct {
	Name  string
	Value string
	Short bool
}
