package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/session"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

// Memory is an in-memory session.Store with the same semantics as the
// SQLite store: values are copied on the way in and out, commits are
// atomic and submission tokens deduplicate. Intended for tests and
// ephemeral runs.
type Memory struct {
	mu       sync.RWMutex
	cards    map[string]flashcard.Card
	sessions map[int64]session.Session
	tokens   map[string]bool
	logs     []spacedrep.ReviewLog
}

var _ session.Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cards:    make(map[string]flashcard.Card),
		sessions: make(map[int64]session.Session),
		tokens:   make(map[string]bool),
	}
}

// LoadSession implements session.Store.
func (m *Memory) LoadSession(_ context.Context, ownerID int64) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[ownerID]
	if !ok {
		return nil, fmt.Errorf("load session %d: %w", ownerID, session.ErrNotFound)
	}
	return copySession(sess), nil
}

// SaveSession implements session.Store.
func (m *Memory) SaveSession(_ context.Context, sess *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.OwnerID] = *copySession(*sess)
	return nil
}

// LoadCard implements session.Store.
func (m *Memory) LoadCard(_ context.Context, id string) (*flashcard.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	card, ok := m.cards[id]
	if !ok {
		return nil, fmt.Errorf("load card %s: %w", id, session.ErrNotFound)
	}
	clone := card.Clone()
	return &clone, nil
}

// SaveCard implements session.Store.
func (m *Memory) SaveCard(_ context.Context, card *flashcard.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card.Clone()
	return nil
}

// QueryDue implements session.Store.
func (m *Memory) QueryDue(_ context.Context, ownerID int64, now time.Time) ([]flashcard.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []flashcard.Card
	for _, card := range m.cards {
		if card.OwnerID == ownerID && card.IsDue(now) {
			due = append(due, card.Clone())
		}
	}
	return due, nil
}

// CommitReview implements session.Store.
func (m *Memory) CommitReview(_ context.Context, card *flashcard.Card, sess *session.Session, log *spacedrep.ReviewLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := log.CardID + "/" + log.Token
	if log.Token != "" && m.tokens[key] {
		return fmt.Errorf("commit review %s: %w", log.CardID, session.ErrDuplicateSubmission)
	}
	m.cards[card.ID] = card.Clone()
	m.sessions[sess.OwnerID] = *copySession(*sess)
	m.logs = append(m.logs, *log)
	if log.Token != "" {
		m.tokens[key] = true
	}
	return nil
}

// Logs returns a copy of all committed review logs in commit order.
func (m *Memory) Logs() []spacedrep.ReviewLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]spacedrep.ReviewLog, len(m.logs))
	copy(out, m.logs)
	return out
}

func copySession(sess session.Session) *session.Session {
	out := sess
	if sess.Queue != nil {
		out.Queue = append([]string(nil), sess.Queue...)
	}
	return &out
}
