package domain

import "time"

// ChatMessage is one logged group-chat message relayed into the tenant's
// context.
type ChatMessage struct {
	// ID is the unique identifier for the log row.
	ID string

	// ChatID is the external chat identifier.
	ChatID string

	// ChannelName is the chat or group title.
	ChannelName string

	// Sender is the message author's handle.
	Sender string

	// Text is the message body.
	Text string

	// LoggedAt is when the message was recorded.
	LoggedAt time.Time
}
