package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreHistoryLoadIsIdempotent(t *testing.T) {
	s := NewStore(nil)
	s.SetActiveTeam(5)

	history := []Message{msgAt(2, 5, time.Minute), msgAt(1, 5, 0)}

	require.True(t, s.ApplyHistory(5, history))
	first := s.Messages()

	require.True(t, s.ApplyHistory(5, history))
	second := s.Messages()

	assert.Equal(t, first, second)
	assert.Equal(t, []uint{1, 2}, ids(second), "history is sorted oldest to newest")
}

func TestStoreDiscardsStaleHistory(t *testing.T) {
	s := NewStore(nil)
	s.SetActiveTeam(1) // fetch for team 1 goes out...

	s.SetActiveTeam(2) // ...user switches before it resolves
	require.True(t, s.ApplyHistory(2, []Message{msgAt(10, 2, 0)}))

	// Team 1's late response must be discarded.
	assert.False(t, s.ApplyHistory(1, []Message{msgAt(99, 1, 0)}))
	assert.Equal(t, []uint{10}, ids(s.Messages()))
}

func TestStoreIgnoresPushesForOtherTeams(t *testing.T) {
	s := NewStore(nil)
	s.SetActiveTeam(2)
	require.True(t, s.ApplyHistory(2, nil))

	s.Handle(Event{Type: EventReceiveMessage, TeamID: 1, Message: msgAt(7, 1, 0)})
	assert.Empty(t, s.Messages())

	s.Handle(Event{Type: EventReceiveMessage, TeamID: 2, Message: msgAt(8, 2, 0)})
	assert.Equal(t, []uint{8}, ids(s.Messages()))
}

func TestStoreDropsMalformedEvents(t *testing.T) {
	s := NewStore(nil)
	s.SetActiveTeam(2)

	// No message id: dropped, never applied.
	s.Handle(Event{Type: EventReceiveMessage, TeamID: 2})
	assert.Empty(t, s.Messages())
}

func TestStoreSwitchingTeamsClearsList(t *testing.T) {
	s := NewStore(nil)
	s.SetActiveTeam(2)
	require.True(t, s.ApplyHistory(2, []Message{msgAt(1, 2, 0)}))

	s.SetActiveTeam(3)
	assert.Empty(t, s.Messages())
	assert.Equal(t, uint(3), s.ActiveTeam())

	// Re-selecting the same team must not clear anything.
	require.True(t, s.ApplyHistory(3, []Message{msgAt(5, 3, 0)}))
	s.SetActiveTeam(3)
	assert.Equal(t, []uint{5}, ids(s.Messages()))
}

func TestStoreEndToEndReconciliation(t *testing.T) {
	s := NewStore(nil)
	s.SetActiveTeam(5)
	require.True(t, s.ApplyHistory(5, []Message{msgAt(1, 5, 0), msgAt(2, 5, time.Minute)}))

	s.Handle(Event{Type: EventReceiveMessage, TeamID: 5, Message: msgAt(3, 5, 2*time.Minute)})
	s.Handle(Event{Type: EventMessageDeleted, TeamID: 5, Message: Message{ID: 2}})

	edited := msgAt(1, 5, 0)
	edited.Content = "edited"
	s.Handle(Event{Type: EventMessageUpdated, TeamID: 5, Message: edited})

	list := s.Messages()
	require.Equal(t, []uint{1, 2, 3}, ids(list))
	assert.Equal(t, "edited", list[0].Content)
	assert.True(t, list[0].Edited)
	assert.True(t, list[1].Deleted)
	assert.Equal(t, TombstoneContent, list[1].Content)
}
