package store

import (
	"context"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
)

// A card counts as mastered once its ease is back at the starting value or
// above and its interval has grown past a month.
const (
	masteredEase         = 2.5
	masteredIntervalDays = 30
)

// CollectionStats summarizes an owner's card collection.
type CollectionStats struct {
	TotalCards  int
	DueNow      int
	DueToday    int
	DueThisWeek int
	NewCards    int
	Mastered    int

	ByType map[flashcard.CardType]int

	ReviewsLast7Days int
}

// CollectionStats computes collection counters for the owner as of now.
// DueToday extends to the end of now's calendar day; DueThisWeek to seven
// days out.
func (s *Store) CollectionStats(ctx context.Context, ownerID int64, now time.Time) (*CollectionStats, error) {
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	weekOut := now.Add(7 * 24 * time.Hour)

	stats := &CollectionStats{ByType: make(map[flashcard.CardType]int)}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN due_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN due_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN due_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN last_reviewed_at IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ease_factor >= ? AND interval_days >= ? THEN 1 ELSE 0 END), 0)
		FROM cards WHERE owner_id = ?`,
		fmtTime(now), fmtTime(endOfDay), fmtTime(weekOut),
		masteredEase, masteredIntervalDays, ownerID).
		Scan(&stats.TotalCards, &stats.DueNow, &stats.DueToday,
			&stats.DueThisWeek, &stats.NewCards, &stats.Mastered)
	if err != nil {
		return nil, unavailable("collection stats", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM cards WHERE owner_id = ? GROUP BY type`, ownerID)
	if err != nil {
		return nil, unavailable("collection stats by type", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, unavailable("scan type count", err)
		}
		stats.ByType[flashcard.CardType(typ)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("collection stats by type", err)
	}

	stats.ReviewsLast7Days, err = s.countReviewsSince(ctx, ownerID, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	return stats, nil
}
