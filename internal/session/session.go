package session

import (
	"time"

	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

// Session is the per-learner state machine for reviewing and editing.
// At most one live session exists per owner; all durable state is here and
// in the store, never in the Engine.
//
// Invariant: ActiveCardID is set exactly while reviewing, or while editing
// with a suspended review underneath (PriorMode = reviewing).
type Session struct {
	OwnerID int64 `json:"owner_id"`
	Mode    Mode  `json:"mode"`

	// PriorMode is the mode to restore when editing finishes. Set only
	// while Mode is editing.
	PriorMode Mode `json:"prior_mode,omitempty"`

	// ActiveCardID is the card currently being reviewed.
	ActiveCardID string `json:"active_card_id,omitempty"`

	// EditingCardID is the card being edited while Mode is editing.
	EditingCardID string `json:"editing_card_id,omitempty"`

	// Queue holds the remaining card IDs of the due snapshot taken at
	// review start. The active card is not part of it.
	Queue []string `json:"queue,omitempty"`

	StartedAt time.Time `json:"started_at"`
	Stats     Stats     `json:"stats"`
}

// Stats counts review outcomes by grade within one session.
type Stats struct {
	Again int `json:"again"`
	Hard  int `json:"hard"`
	Good  int `json:"good"`
	Easy  int `json:"easy"`
}

// Record counts one graded outcome.
func (s *Stats) Record(g spacedrep.Grade) {
	switch g {
	case spacedrep.Again:
		s.Again++
	case spacedrep.Hard:
		s.Hard++
	case spacedrep.Good:
		s.Good++
	case spacedrep.Easy:
		s.Easy++
	}
}

// Total returns the number of outcomes recorded.
func (s Stats) Total() int {
	return s.Again + s.Hard + s.Good + s.Easy
}

// Passed returns the number of successful recalls (hard, good or easy).
func (s Stats) Passed() int {
	return s.Hard + s.Good + s.Easy
}

// New creates an idle session for the owner.
func New(ownerID int64) *Session {
	return &Session{OwnerID: ownerID, Mode: ModeIdle}
}

// beginReview snapshots the due queue and activates its first card.
func (s *Session) beginReview(queue []string, now time.Time) {
	s.Mode = ModeReviewing
	s.ActiveCardID = queue[0]
	s.Queue = queue[1:]
	s.StartedAt = now
	s.Stats = Stats{}
}

// advance pops the next queue entry into ActiveCardID. When the queue is
// exhausted it returns to idle and reports false.
func (s *Session) advance() bool {
	if len(s.Queue) > 0 {
		s.ActiveCardID = s.Queue[0]
		s.Queue = s.Queue[1:]
		return true
	}
	s.Mode = ModeIdle
	s.ActiveCardID = ""
	s.Queue = nil
	return false
}

// startEdit suspends the current mode and enters editing.
func (s *Session) startEdit(cardID string) {
	s.PriorMode = s.Mode
	s.Mode = ModeEditing
	s.EditingCardID = cardID
}

// finishEdit restores the mode suspended by startEdit. Queue and active
// card are untouched.
func (s *Session) finishEdit() {
	if s.PriorMode == "" {
		s.PriorMode = ModeIdle
	}
	s.Mode = s.PriorMode
	s.PriorMode = ""
	s.EditingCardID = ""
}

// cancel abandons the session from any mode. Already-committed outcomes
// stay committed.
func (s *Session) cancel() {
	s.Mode = ModeIdle
	s.PriorMode = ""
	s.ActiveCardID = ""
	s.EditingCardID = ""
	s.Queue = nil
}
