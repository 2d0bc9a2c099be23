package session

import (
	"context"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

// Store is the persistence boundary the engine drives. The engine owns no
// durable state; implementations live elsewhere and are injected.
//
// Load methods return ErrNotFound for missing rows and ErrStoreUnavailable
// for infrastructure failures, matched via errors.Is.
type Store interface {
	// LoadSession returns the owner's session.
	LoadSession(ctx context.Context, ownerID int64) (*Session, error)

	// SaveSession inserts or replaces the owner's session.
	SaveSession(ctx context.Context, sess *Session) error

	// LoadCard returns the card with the given ID.
	LoadCard(ctx context.Context, id string) (*flashcard.Card, error)

	// SaveCard inserts or replaces a card.
	SaveCard(ctx context.Context, card *flashcard.Card) error

	// QueryDue returns the owner's cards due at or before now. The result
	// may be a superset; the scheduler re-filters and orders it.
	QueryDue(ctx context.Context, ownerID int64, now time.Time) ([]flashcard.Card, error)

	// CommitReview persists a graded outcome: the updated card, the
	// advanced session and the review log land atomically or not at all.
	// A log whose (card, token) pair was already committed fails with
	// ErrDuplicateSubmission and writes nothing.
	CommitReview(ctx context.Context, card *flashcard.Card, sess *Session, log *spacedrep.ReviewLog) error
}
