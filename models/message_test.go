package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTombstoneClearsContentAndAttachment(t *testing.T) {
	attID := uint(7)
	msg := Message{
		Model:        gorm.Model{ID: 3},
		TeamID:       1,
		SenderID:     2,
		Kind:         MessageKindImage,
		Content:      "diagram.png",
		AttachmentID: &attID,
		Attachment:   &Attachment{URL: "https://cdn.example.com/diagram.png"},
	}

	now := time.Now().UTC()
	msg.Tombstone(now)

	assert.True(t, msg.Deleted)
	require.NotNil(t, msg.RemovedAt)
	assert.Equal(t, now, *msg.RemovedAt)
	assert.Equal(t, TombstoneContent, msg.Content)
	assert.Nil(t, msg.AttachmentID)
	assert.Nil(t, msg.Attachment)
}

func TestPayloadKeepsSenderAndCreationTime(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := Message{
		Model:    gorm.Model{ID: 9, CreatedAt: created},
		TeamID:   4,
		SenderID: 2,
		Kind:     MessageKindText,
		Content:  "standup at ten",
		Sender:   User{Model: gorm.Model{ID: 2}, Name: "Dana"},
	}

	p := msg.Payload()

	assert.Equal(t, uint(9), p.ID)
	assert.Equal(t, uint(4), p.TeamID)
	assert.Equal(t, uint(2), p.SenderID)
	assert.Equal(t, "Dana", p.SenderName)
	assert.Equal(t, created, p.CreatedAt)
	assert.False(t, p.Deleted)
}

func TestPayloadNeverServesDeletedContent(t *testing.T) {
	// Even if a row still carries stale content and an attachment, the
	// wire shape of a deleted message is always the tombstone.
	msg := Message{
		Model:      gorm.Model{ID: 5},
		TeamID:     1,
		SenderID:   2,
		Kind:       MessageKindFile,
		Content:    "secret.pdf",
		Deleted:    true,
		Attachment: &Attachment{URL: "https://cdn.example.com/secret.pdf"},
	}

	p := msg.Payload()

	assert.True(t, p.Deleted)
	assert.Equal(t, TombstoneContent, p.Content)
	assert.Nil(t, p.Attachment)
}

func TestPayloadCarriesAttachment(t *testing.T) {
	msg := Message{
		Model:    gorm.Model{ID: 6},
		TeamID:   1,
		SenderID: 2,
		Kind:     MessageKindImage,
		Content:  "photo.jpg",
		Attachment: &Attachment{
			URL:         "https://cdn.example.com/photo.jpg",
			FileName:    "photo.jpg",
			ContentType: "image/jpeg",
			Size:        2048,
		},
	}

	p := msg.Payload()

	require.NotNil(t, p.Attachment)
	assert.Equal(t, "https://cdn.example.com/photo.jpg", p.Attachment.URL)
	assert.Equal(t, "photo.jpg", p.Attachment.FileName)
	assert.Equal(t, "image/jpeg", p.Attachment.ContentType)
	assert.Equal(t, int64(2048), p.Attachment.Size)
}
