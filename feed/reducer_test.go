package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(id uint, team uint, offset time.Duration) Message {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return Message{
		ID:        id,
		TeamID:    team,
		SenderID:  1,
		Kind:      "text",
		Content:   "hello",
		CreatedAt: base.Add(offset),
	}
}

func ids(list []Message) []uint {
	out := make([]uint, len(list))
	for i, m := range list {
		out[i] = m.ID
	}
	return out
}

func TestApplyReceiveKeepsOrderByCreation(t *testing.T) {
	list := []Message{msgAt(1, 5, 0), msgAt(3, 5, 2*time.Minute)}

	// A message created between the two arrives late.
	list = Apply(list, Event{Type: EventReceiveMessage, TeamID: 5, Message: msgAt(2, 5, time.Minute)})

	assert.Equal(t, []uint{1, 2, 3}, ids(list))
}

func TestApplyReceiveDedupesByID(t *testing.T) {
	list := []Message{msgAt(1, 5, 0)}

	// Duplicate delivery of the same push event.
	list = Apply(list, Event{Type: EventReceiveMessage, TeamID: 5, Message: msgAt(1, 5, 0)})

	assert.Len(t, list, 1)
}

func TestApplyReceiveDoesNotMutateInput(t *testing.T) {
	orig := []Message{msgAt(2, 5, time.Minute)}
	out := Apply(orig, Event{Type: EventReceiveMessage, TeamID: 5, Message: msgAt(1, 5, 0)})

	assert.Equal(t, []uint{2}, ids(orig))
	assert.Equal(t, []uint{1, 2}, ids(out))
}

func TestApplyUpdatedReplacesMutableFieldsOnly(t *testing.T) {
	list := []Message{msgAt(1, 5, 0)}

	edited := msgAt(1, 5, 0)
	edited.Content = "hello again"
	now := time.Now().UTC()
	edited.EditedAt = &now
	edited.SenderID = 99 // must not take effect

	out := Apply(list, Event{Type: EventMessageUpdated, TeamID: 5, Message: edited})

	require.Len(t, out, 1)
	assert.Equal(t, "hello again", out[0].Content)
	assert.True(t, out[0].Edited)
	assert.Equal(t, &now, out[0].EditedAt)
	assert.Equal(t, uint(1), out[0].SenderID, "sender is immutable")
	assert.Equal(t, list[0].CreatedAt, out[0].CreatedAt, "creation time is immutable")
}

func TestApplyUpdatedUnknownIDIsNoop(t *testing.T) {
	list := []Message{msgAt(1, 5, 0)}
	out := Apply(list, Event{Type: EventMessageUpdated, TeamID: 5, Message: msgAt(42, 5, 0)})
	assert.Equal(t, list, out)
}

func TestApplyDeletedTombstonesInPlace(t *testing.T) {
	m2 := msgAt(2, 5, time.Minute)
	m2.Kind = "file"
	m2.Attachment = &Attachment{URL: "http://files/x.pdf", FileName: "x.pdf"}
	list := []Message{msgAt(1, 5, 0), m2, msgAt(3, 5, 2*time.Minute)}

	out := Apply(list, Event{Type: EventMessageDeleted, TeamID: 5, Message: Message{ID: 2}})

	require.Len(t, out, 3)
	assert.Equal(t, []uint{1, 2, 3}, ids(out), "tombstone keeps its position")
	assert.True(t, out[1].Deleted)
	assert.Equal(t, TombstoneContent, out[1].Content)
	assert.Nil(t, out[1].Attachment, "attachment must be unreachable after delete")
}

func TestApplyDeleteIsTerminal(t *testing.T) {
	list := []Message{msgAt(1, 5, 0)}
	list = Apply(list, Event{Type: EventMessageDeleted, TeamID: 5, Message: Message{ID: 1}})

	// A late edit for a tombstoned message must not resurrect content.
	edited := msgAt(1, 5, 0)
	edited.Content = "back from the dead"
	out := Apply(list, Event{Type: EventMessageUpdated, TeamID: 5, Message: edited})

	require.Len(t, out, 1)
	assert.True(t, out[0].Deleted)
	assert.Equal(t, TombstoneContent, out[0].Content)

	// Deleting twice is also a no-op.
	out = Apply(out, Event{Type: EventMessageDeleted, TeamID: 5, Message: Message{ID: 1}})
	assert.Equal(t, TombstoneContent, out[0].Content)
}

func TestApplyUnknownEventTypeIsNoop(t *testing.T) {
	list := []Message{msgAt(1, 5, 0)}
	out := Apply(list, Event{Type: "typing-indicator", TeamID: 5, Message: Message{ID: 1}})
	assert.Equal(t, list, out)
}
