// Package feed is the client-side view-model for a team's message feed.
// It keeps one ordered, deduplicated list of messages per active team,
// reconciling bulk history fetches with live push events. The transport
// (Subscriber, Client) only decodes wire data into the typed records
// here; all list manipulation goes through the pure reducer in Apply.
package feed

import "time"

// Push event types emitted by the collaboration service.
const (
	EventReceiveMessage = "receive-message"
	EventMessageUpdated = "message-updated"
	EventMessageDeleted = "message-deleted"
)

// TombstoneContent is the display content of a deleted message.
const TombstoneContent = "This message has been deleted"

// Attachment is the client-side record of a file or image backing a message.
type Attachment struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Message is the client-side record of a feed entry. It mirrors the
// payload served by the history endpoint and the push channel.
type Message struct {
	ID         uint        `json:"id"`
	TeamID     uint        `json:"team_id"`
	SenderID   uint        `json:"sender_id"`
	SenderName string      `json:"sender_name,omitempty"`
	Kind       string      `json:"kind"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	Edited     bool        `json:"edited"`
	EditedAt   *time.Time  `json:"edited_at,omitempty"`
	Deleted    bool        `json:"deleted"`
}

// Event is a decoded push-channel frame.
type Event struct {
	Type    string  `json:"event"`
	TeamID  uint    `json:"team_id"`
	Message Message `json:"message"`
}
