// Package realtime owns the push channel: one websocket connection per
// user, multiplexing events for every team the user has joined on that
// connection. The hub never touches the database; membership checks are
// supplied by the caller at join time.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"teamspace/models"
)

// Push event types. The payload mirrors the message wire shape.
const (
	EventReceiveMessage = "receive-message"
	EventMessageUpdated = "message-updated"
	EventMessageDeleted = "message-deleted"
)

// Event is a single push frame broadcast to a team.
type Event struct {
	Type    string                `json:"event"`
	TeamID  uint                  `json:"team_id"`
	Message models.MessagePayload `json:"message"`
}

type subscription struct {
	client *Client
	teamID uint
	join   bool
}

// Hub maintains the set of active clients and routes events to the
// clients subscribed to each team. All state is owned by the Run
// goroutine; everything else communicates over channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan Event

	clients map[*Client]bool
	byTeam  map[uint]map[*Client]bool

	log *logrus.Entry
}

func NewHub(log *logrus.Entry) *Hub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		broadcast:  make(chan Event, 64),
		clients:    make(map[*Client]bool),
		byTeam:     make(map[uint]map[*Client]bool),
		log:        log,
	}
}

// Run owns all hub state. It must be started before any client connects
// and runs until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}

		case sub := <-h.subscribe:
			if !h.clients[sub.client] {
				continue
			}
			if sub.join {
				if h.byTeam[sub.teamID] == nil {
					h.byTeam[sub.teamID] = make(map[*Client]bool)
				}
				h.byTeam[sub.teamID][sub.client] = true
			} else if members := h.byTeam[sub.teamID]; members != nil {
				delete(members, sub.client)
				if len(members) == 0 {
					delete(h.byTeam, sub.teamID)
				}
			}

		case ev := <-h.broadcast:
			raw, err := json.Marshal(ev)
			if err != nil {
				h.log.WithError(err).Error("failed to encode push event")
				continue
			}
			for c := range h.byTeam[ev.TeamID] {
				select {
				case c.send <- raw:
				default:
					// Slow consumer: drop the connection rather than
					// block the hub.
					h.log.WithField("user_id", c.userID).Warn("dropping slow push client")
					h.drop(c)
				}
			}
		}
	}
}

// Broadcast queues an event for delivery to the team's subscribers.
func (h *Hub) Broadcast(ev Event) {
	h.broadcast <- ev
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	for teamID, members := range h.byTeam {
		if members[c] {
			delete(members, c)
			if len(members) == 0 {
				delete(h.byTeam, teamID)
			}
		}
	}
	close(c.send)
}
