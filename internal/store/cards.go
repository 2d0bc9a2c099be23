package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/session"
)

const cardColumns = `id, owner_id, type, title, tags, content, ease_factor,
	interval_days, repetitions, lapses, due_at, last_reviewed_at,
	times_correct, times_incorrect, created_at, updated_at`

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// write paths can run standalone or inside CommitReview's transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// LoadCard returns the card with the given ID.
func (s *Store) LoadCard(ctx context.Context, id string) (*flashcard.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load card %s: %w", id, session.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("load card", err)
	}
	return card, nil
}

// SaveCard inserts or replaces a card.
func (s *Store) SaveCard(ctx context.Context, card *flashcard.Card) error {
	return saveCard(ctx, s.db, card)
}

// QueryDue returns the owner's cards due at or before now, soonest first.
func (s *Store) QueryDue(ctx context.Context, ownerID int64, now time.Time) ([]flashcard.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards
		 WHERE owner_id = ? AND due_at <= ?
		 ORDER BY due_at, id`,
		ownerID, fmtTime(now))
	if err != nil {
		return nil, unavailable("query due cards", err)
	}
	defer rows.Close()

	var cards []flashcard.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, unavailable("scan due card", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query due cards", err)
	}
	return cards, nil
}

// CountCards returns the number of cards the owner has.
func (s *Store) CountCards(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, unavailable("count cards", err)
	}
	return n, nil
}

func saveCard(ctx context.Context, q dbtx, card *flashcard.Card) error {
	if card.Content == nil {
		return fmt.Errorf("save card %s: no content", card.ID)
	}
	content, err := json.Marshal(card.Content)
	if err != nil {
		return fmt.Errorf("save card %s: marshal content: %w", card.ID, err)
	}
	tags := []byte("[]")
	if len(card.Tags) > 0 {
		tags, err = json.Marshal(card.Tags)
		if err != nil {
			return fmt.Errorf("save card %s: marshal tags: %w", card.ID, err)
		}
	}
	var lastReviewed sql.NullString
	if card.LastReviewedAt != nil {
		lastReviewed = sql.NullString{String: fmtTime(*card.LastReviewedAt), Valid: true}
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id         = excluded.owner_id,
			type             = excluded.type,
			title            = excluded.title,
			tags             = excluded.tags,
			content          = excluded.content,
			ease_factor      = excluded.ease_factor,
			interval_days    = excluded.interval_days,
			repetitions      = excluded.repetitions,
			lapses           = excluded.lapses,
			due_at           = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			times_correct    = excluded.times_correct,
			times_incorrect  = excluded.times_incorrect,
			updated_at       = excluded.updated_at`,
		card.ID, card.OwnerID, string(card.Type), card.Title, string(tags),
		string(content), card.EaseFactor, card.IntervalDays, card.Repetitions,
		card.Lapses, fmtTime(card.DueAt), lastReviewed, card.TimesCorrect,
		card.TimesIncorrect, fmtTime(card.CreatedAt), fmtTime(card.UpdatedAt))
	if err != nil {
		return unavailable("save card", err)
	}
	return nil
}

func scanCard(row rowScanner) (*flashcard.Card, error) {
	var (
		c            flashcard.Card
		typ          string
		tagsJSON     string
		contentJSON  string
		dueAt        string
		lastReviewed sql.NullString
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(&c.ID, &c.OwnerID, &typ, &c.Title, &tagsJSON, &contentJSON,
		&c.EaseFactor, &c.IntervalDays, &c.Repetitions, &c.Lapses, &dueAt,
		&lastReviewed, &c.TimesCorrect, &c.TimesIncorrect, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Type = flashcard.CardType(typ)
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("card %s: decode tags: %w", c.ID, err)
	}
	if len(tags) > 0 {
		c.Tags = tags
	}
	c.Content, err = flashcard.UnmarshalContent(c.Type, []byte(contentJSON))
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", c.ID, err)
	}
	if c.DueAt, err = parseTime(dueAt); err != nil {
		return nil, fmt.Errorf("card %s: parse due_at: %w", c.ID, err)
	}
	if lastReviewed.Valid {
		t, err := parseTime(lastReviewed.String)
		if err != nil {
			return nil, fmt.Errorf("card %s: parse last_reviewed_at: %w", c.ID, err)
		}
		c.LastReviewedAt = &t
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("card %s: parse created_at: %w", c.ID, err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("card %s: parse updated_at: %w", c.ID, err)
	}
	return &c, nil
}
