package feed

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store holds the feed state for the currently active team. It is an
// explicit dependency: construct one and pass it to whatever renders the
// feed and to the Subscriber that feeds it events.
//
// History responses carry the team id they were fetched for; responses
// arriving after the active team changed are discarded so a slow fetch
// for the previous team can never clobber the current one.
type Store struct {
	mu  sync.Mutex
	log *logrus.Entry

	teamID   uint // active team, 0 while none selected
	messages []Message
}

func NewStore(log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{log: log}
}

// SetActiveTeam switches the feed to another team and clears the list.
// Pushes and history responses for other teams are ignored from then on.
func (s *Store) SetActiveTeam(teamID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.teamID == teamID {
		return
	}
	s.teamID = teamID
	s.messages = nil
}

// ActiveTeam returns the id of the currently active team.
func (s *Store) ActiveTeam() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamID
}

// ApplyHistory replaces the list with a server-fetched history. It
// reports whether the response was accepted; a response for a team that
// is no longer active is discarded.
func (s *Store) ApplyHistory(teamID uint, msgs []Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if teamID != s.teamID {
		s.log.WithFields(logrus.Fields{
			"response_team": teamID,
			"active_team":   s.teamID,
		}).Warn("discarding stale history response")
		return false
	}

	out := make([]Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	s.messages = out
	return true
}

// Handle reconciles a push event into the list. Malformed events are
// dropped and logged; events for a non-active team are ignored.
func (s *Store) Handle(ev Event) {
	if ev.Message.ID == 0 {
		s.log.WithField("event", ev.Type).Warn("dropping push event without message id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.TeamID != s.teamID {
		return
	}
	s.messages = Apply(s.messages, ev)
}

// Messages returns a copy of the current ordered list.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
