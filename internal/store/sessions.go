package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nturan/flashgram-bot/internal/session"
)

// LoadSession returns the owner's session.
func (s *Store) LoadSession(ctx context.Context, ownerID int64) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT owner_id, mode, prior_mode, active_card_id, editing_card_id,
		       queue, started_at, stats_again, stats_hard, stats_good, stats_easy
		FROM sessions WHERE owner_id = ?`, ownerID)

	var (
		sess      session.Session
		mode      string
		priorMode string
		queueJSON string
		startedAt string
	)
	err := row.Scan(&sess.OwnerID, &mode, &priorMode, &sess.ActiveCardID,
		&sess.EditingCardID, &queueJSON, &startedAt,
		&sess.Stats.Again, &sess.Stats.Hard, &sess.Stats.Good, &sess.Stats.Easy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load session %d: %w", ownerID, session.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("load session", err)
	}

	sess.Mode = session.Mode(mode)
	sess.PriorMode = session.Mode(priorMode)
	var queue []string
	if err := json.Unmarshal([]byte(queueJSON), &queue); err != nil {
		return nil, fmt.Errorf("session %d: decode queue: %w", ownerID, err)
	}
	if len(queue) > 0 {
		sess.Queue = queue
	}
	if sess.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("session %d: parse started_at: %w", ownerID, err)
	}
	return &sess, nil
}

// SaveSession inserts or replaces the owner's session.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	return saveSession(ctx, s.db, sess)
}

func saveSession(ctx context.Context, q dbtx, sess *session.Session) error {
	queue := []byte("[]")
	if len(sess.Queue) > 0 {
		var err error
		queue, err = json.Marshal(sess.Queue)
		if err != nil {
			return fmt.Errorf("save session %d: marshal queue: %w", sess.OwnerID, err)
		}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO sessions (owner_id, mode, prior_mode, active_card_id,
			editing_card_id, queue, started_at,
			stats_again, stats_hard, stats_good, stats_easy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			mode            = excluded.mode,
			prior_mode      = excluded.prior_mode,
			active_card_id  = excluded.active_card_id,
			editing_card_id = excluded.editing_card_id,
			queue           = excluded.queue,
			started_at      = excluded.started_at,
			stats_again     = excluded.stats_again,
			stats_hard      = excluded.stats_hard,
			stats_good      = excluded.stats_good,
			stats_easy      = excluded.stats_easy`,
		sess.OwnerID, string(sess.Mode), string(sess.PriorMode),
		sess.ActiveCardID, sess.EditingCardID, string(queue),
		fmtTime(sess.StartedAt), sess.Stats.Again, sess.Stats.Hard,
		sess.Stats.Good, sess.Stats.Easy)
	if err != nil {
		return unavailable("save session", err)
	}
	return nil
}
