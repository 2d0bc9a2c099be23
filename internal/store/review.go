package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/session"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

// CommitReview persists one graded outcome in a single transaction: the
// rescheduled card, the advanced session and the review log land together
// or not at all. A (card, token) pair that was already committed fails
// with session.ErrDuplicateSubmission and writes nothing.
func (s *Store) CommitReview(ctx context.Context, card *flashcard.Card, sess *session.Session, log *spacedrep.ReviewLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin review commit", err)
	}
	defer tx.Rollback()

	// The unique index on (card_id, token) is the backstop; checking here
	// turns the violation into a clean sentinel before any row changes.
	if log.Token != "" {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM review_logs WHERE card_id = ? AND token = ?`,
			log.CardID, log.Token).Scan(&n)
		if err != nil {
			return unavailable("check submission token", err)
		}
		if n > 0 {
			return fmt.Errorf("commit review %s: %w", log.CardID, session.ErrDuplicateSubmission)
		}
	}

	if err := saveCard(ctx, tx, card); err != nil {
		return err
	}
	if err := saveSession(ctx, tx, sess); err != nil {
		return err
	}

	token := sql.NullString{String: log.Token, Valid: log.Token != ""}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_logs (card_id, owner_id, grade, token, reviewed_at)
		VALUES (?, ?, ?, ?, ?)`,
		log.CardID, log.OwnerID, log.Grade.String(), token, fmtTime(log.ReviewedAt))
	if err != nil {
		return unavailable("insert review log", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit review", err)
	}
	return nil
}

// ReviewHistory returns the owner's most recent review logs, newest first.
func (s *Store) ReviewHistory(ctx context.Context, ownerID int64, limit int) ([]spacedrep.ReviewLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT card_id, owner_id, grade, token, reviewed_at
		FROM review_logs WHERE owner_id = ?
		ORDER BY reviewed_at DESC, id DESC LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, unavailable("query review history", err)
	}
	defer rows.Close()

	var logs []spacedrep.ReviewLog
	for rows.Next() {
		var (
			log        spacedrep.ReviewLog
			grade      string
			token      sql.NullString
			reviewedAt string
		)
		if err := rows.Scan(&log.CardID, &log.OwnerID, &grade, &token, &reviewedAt); err != nil {
			return nil, unavailable("scan review log", err)
		}
		if log.Grade, err = spacedrep.ParseGrade(grade); err != nil {
			return nil, fmt.Errorf("review log for %s: %w", log.CardID, err)
		}
		log.Token = token.String
		if log.ReviewedAt, err = parseTime(reviewedAt); err != nil {
			return nil, fmt.Errorf("review log for %s: parse reviewed_at: %w", log.CardID, err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query review history", err)
	}
	return logs, nil
}

// countReviewsSince returns how many reviews the owner committed at or
// after the cutoff.
func (s *Store) countReviewsSince(ctx context.Context, ownerID int64, cutoff time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_logs WHERE owner_id = ? AND reviewed_at >= ?`,
		ownerID, fmtTime(cutoff)).Scan(&n)
	if err != nil {
		return 0, unavailable("count reviews", err)
	}
	return n, nil
}
