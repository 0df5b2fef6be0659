package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamspace/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func recvFrame(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push frame")
		return Event{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastReachesOnlyJoinedClients(t *testing.T) {
	h := startHub(t)

	joined := NewClient(h, nil, 1)
	other := NewClient(h, nil, 2)
	h.register <- joined
	h.register <- other
	h.subscribe <- subscription{client: joined, teamID: 5, join: true}

	h.Broadcast(Event{
		Type:    EventReceiveMessage,
		TeamID:  5,
		Message: models.MessagePayload{ID: 10, TeamID: 5, Content: "hi"},
	})

	ev := recvFrame(t, joined)
	assert.Equal(t, EventReceiveMessage, ev.Type)
	assert.Equal(t, uint(5), ev.TeamID)
	assert.Equal(t, uint(10), ev.Message.ID)

	assertNoFrame(t, other)
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := startHub(t)

	c := NewClient(h, nil, 1)
	h.register <- c
	h.subscribe <- subscription{client: c, teamID: 5, join: true}
	h.subscribe <- subscription{client: c, teamID: 5, join: false}

	h.Broadcast(Event{Type: EventMessageDeleted, TeamID: 5, Message: models.MessagePayload{ID: 3}})
	assertNoFrame(t, c)
}

func TestClientJoinedToMultipleTeams(t *testing.T) {
	h := startHub(t)

	c := NewClient(h, nil, 1)
	h.register <- c
	h.subscribe <- subscription{client: c, teamID: 5, join: true}
	h.subscribe <- subscription{client: c, teamID: 6, join: true}

	h.Broadcast(Event{Type: EventReceiveMessage, TeamID: 5, Message: models.MessagePayload{ID: 1, TeamID: 5}})
	h.Broadcast(Event{Type: EventReceiveMessage, TeamID: 6, Message: models.MessagePayload{ID: 2, TeamID: 6}})

	first := recvFrame(t, c)
	second := recvFrame(t, c)
	assert.ElementsMatch(t, []uint{5, 6}, []uint{first.TeamID, second.TeamID})
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := startHub(t)

	c := NewClient(h, nil, 1)
	h.register <- c
	h.unregister <- c

	select {
	case _, ok := <-c.send:
		assert.False(t, ok, "send channel should be closed after unregister")
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
}
