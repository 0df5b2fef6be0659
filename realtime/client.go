package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound control-frame size; clients only send join/leave
	maxMessageSize = 512
)

// Client is one authenticated websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
	}
}

// controlFrame is the only thing clients send: team subscription changes.
type controlFrame struct {
	Action string `json:"action"` // join, leave
	TeamID uint   `json:"team_id"`
}

// Serve registers the client and pumps frames until the connection
// closes. canJoin authorizes join requests against team membership; a
// join for a team the user does not belong to is ignored.
func (c *Client) Serve(canJoin func(userID, teamID uint) bool) {
	c.hub.register <- c
	go c.writePump()
	c.readPump(canJoin)
}

func (c *Client) readPump(canJoin func(userID, teamID uint) bool) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame controlFrame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.TeamID == 0 {
			c.hub.log.WithField("user_id", c.userID).Warn("ignoring malformed control frame")
			continue
		}

		switch frame.Action {
		case "join":
			if !canJoin(c.userID, frame.TeamID) {
				c.hub.log.WithField("user_id", c.userID).
					WithField("team_id", frame.TeamID).
					Warn("ignoring join for team without membership")
				continue
			}
			c.hub.subscribe <- subscription{client: c, teamID: frame.TeamID, join: true}
		case "leave":
			c.hub.subscribe <- subscription{client: c, teamID: frame.TeamID, join: false}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
