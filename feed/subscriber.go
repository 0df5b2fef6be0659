package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Subscriber is the transport adapter between the push channel and a
// Store. It only decodes frames into typed events; all feed logic lives
// in the store and reducer.
type Subscriber struct {
	conn  *websocket.Conn
	store *Store
	log   *logrus.Entry

	writeMu sync.Mutex
}

type subscribeFrame struct {
	Action string `json:"action"` // join, leave
	TeamID uint   `json:"team_id"`
}

// DialSubscriber connects to the push channel, authenticating with the
// bearer token. The single connection multiplexes every team the user
// joins; Switch scopes which team's events reach the store.
func DialSubscriber(ctx context.Context, url, token string, store *Store, log *logrus.Entry) (*Subscriber, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	return &Subscriber{conn: conn, store: store, log: log}, nil
}

// Switch moves the subscription to another team: it unsubscribes from
// the previously active team, points the store at the new one and joins
// it. In-flight history fetches for the old team are not aborted; the
// store discards their responses when they arrive.
func (s *Subscriber) Switch(teamID uint) error {
	if prev := s.store.ActiveTeam(); prev != 0 && prev != teamID {
		if err := s.writeFrame(subscribeFrame{Action: "leave", TeamID: prev}); err != nil {
			return err
		}
	}
	s.store.SetActiveTeam(teamID)
	return s.writeFrame(subscribeFrame{Action: "join", TeamID: teamID})
}

// Listen reads push frames until the context is cancelled or the
// connection drops. Frames that fail to decode are logged and skipped;
// they never reach the store.
func (s *Subscriber) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.log.WithError(err).Warn("skipping undecodable push frame")
			continue
		}
		s.store.Handle(ev)
	}
}

func (s *Subscriber) writeFrame(f subscribeFrame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(f)
}

func (s *Subscriber) Close() error {
	return s.conn.Close()
}
