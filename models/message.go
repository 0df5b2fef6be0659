package models

import (
	"time"

	"gorm.io/gorm"
)

// Message kinds
const (
	MessageKindText     = "text"
	MessageKindImage    = "image"
	MessageKindFile     = "file"
	MessageKindCallLink = "call_link"
)

// TombstoneContent replaces the content of a soft-deleted message. Once a
// message is tombstoned its original content and attachment are never
// served again.
const TombstoneContent = "This message has been deleted"

// Message represents a single entry in a team's feed. Deletion is a soft
// delete: the row keeps its position in the feed and its content is
// replaced by the tombstone at delete time.
type Message struct {
	gorm.Model
	TeamID   uint `gorm:"not null;index" json:"team_id"`
	SenderID uint `gorm:"not null;index" json:"sender_id"`

	Kind    string `gorm:"default:'text'" json:"kind"` // text, image, file, call_link
	Content string `json:"content"`

	AttachmentID *uint `json:"attachment_id,omitempty"`

	Edited   bool       `gorm:"default:false" json:"edited"`
	EditedAt *time.Time `json:"edited_at,omitempty"`

	// Deleted marks the tombstone state. gorm.Model's DeletedAt is not used
	// for messages: tombstones must stay visible in queries.
	Deleted   bool       `gorm:"default:false" json:"deleted"`
	RemovedAt *time.Time `json:"removed_at,omitempty"`

	// Relations
	Team       Team        `json:"-"`
	Sender     User        `json:"sender,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Tombstone rewrites the message into its deleted form. The attachment
// reference is cleared so serialized tombstones can never leak a link.
func (m *Message) Tombstone(now time.Time) {
	m.Deleted = true
	m.RemovedAt = &now
	m.Content = TombstoneContent
	m.AttachmentID = nil
	m.Attachment = nil
}

// AttachmentPayload is the wire shape of an attachment reference.
type AttachmentPayload struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// MessagePayload is the wire shape served by the history endpoint and
// the push channel. The displayed content is a pure function of (kind,
// content, attachment, deleted): tombstoned messages serialize with the
// tombstone content and no attachment, whatever the row still holds.
type MessagePayload struct {
	ID         uint               `json:"id"`
	TeamID     uint               `json:"team_id"`
	SenderID   uint               `json:"sender_id"`
	SenderName string             `json:"sender_name,omitempty"`
	Kind       string             `json:"kind"`
	Content    string             `json:"content"`
	Attachment *AttachmentPayload `json:"attachment,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	Edited     bool               `json:"edited"`
	EditedAt   *time.Time         `json:"edited_at,omitempty"`
	Deleted    bool               `json:"deleted"`
}

// Payload builds the wire representation of the message. The Sender and
// Attachment relations should be preloaded when available.
func (m *Message) Payload() MessagePayload {
	p := MessagePayload{
		ID:        m.ID,
		TeamID:    m.TeamID,
		SenderID:  m.SenderID,
		Kind:      m.Kind,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Edited:    m.Edited,
		EditedAt:  m.EditedAt,
		Deleted:   m.Deleted,
	}
	if m.Sender.ID != 0 {
		p.SenderName = m.Sender.Name
	}
	if m.Deleted {
		p.Content = TombstoneContent
		return p
	}
	if m.Attachment != nil {
		p.Attachment = &AttachmentPayload{
			URL:         m.Attachment.URL,
			FileName:    m.Attachment.FileName,
			ContentType: m.Attachment.ContentType,
			Size:        m.Attachment.Size,
		}
	}
	return p
}
