package flashcard

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultEaseFactor is the ease assigned to a card that has never been
// reviewed.
const DefaultEaseFactor = 2.5

// Card is a single flashcard together with its scheduling state.
// Scheduling only reads the ease/interval/repetition fields; Content is
// opaque to it.
type Card struct {
	ID      string   `json:"id"`
	OwnerID int64    `json:"owner_id"`
	Type    CardType `json:"type"`
	Title   string   `json:"title,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Content Content  `json:"content"`

	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	Lapses         int        `json:"lapses"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"` // nil before first review.

	TimesCorrect   int       `json:"times_correct"`
	TimesIncorrect int       `json:"times_incorrect"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// New creates a card with fresh scheduling state. The card is due
// immediately (DueAt = now) and starts at the default ease.
func New(id string, ownerID int64, content Content, now time.Time) Card {
	return Card{
		ID:         id,
		OwnerID:    ownerID,
		Type:       content.Kind(),
		Content:    content,
		EaseFactor: DefaultEaseFactor,
		DueAt:      now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy of the card. Content values are shared; they
// are replaced wholesale on edit, never mutated in place.
func (c Card) Clone() Card {
	out := c
	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}
	if c.LastReviewedAt != nil {
		v := *c.LastReviewedAt
		out.LastReviewedAt = &v
	}
	return out
}

// IsDue reports whether the card is due at or before now.
func (c Card) IsDue(now time.Time) bool {
	return !now.Before(c.DueAt)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not
// yet due.
func (c Card) OverdueDays(now time.Time) float64 {
	if now.Before(c.DueAt) {
		return 0
	}
	return now.Sub(c.DueAt).Hours() / 24.0
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.LastReviewedAt == nil
}

// cardJSON is the serialized form of a Card. Content is kept raw so it can
// be decoded according to Type.
type cardJSON struct {
	ID      string          `json:"id"`
	OwnerID int64           `json:"owner_id"`
	Type    CardType        `json:"type"`
	Title   string          `json:"title,omitempty"`
	Tags    []string        `json:"tags,omitempty"`
	Content json.RawMessage `json:"content"`

	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	Lapses         int        `json:"lapses"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`

	TimesCorrect   int       `json:"times_correct"`
	TimesIncorrect int       `json:"times_incorrect"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler.
func (c Card) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if c.Content != nil {
		b, err := json.Marshal(c.Content)
		if err != nil {
			return nil, fmt.Errorf("marshal %s content: %w", c.Type, err)
		}
		raw = b
	}
	return json.Marshal(cardJSON{
		ID:             c.ID,
		OwnerID:        c.OwnerID,
		Type:           c.Type,
		Title:          c.Title,
		Tags:           c.Tags,
		Content:        raw,
		EaseFactor:     c.EaseFactor,
		IntervalDays:   c.IntervalDays,
		Repetitions:    c.Repetitions,
		Lapses:         c.Lapses,
		DueAt:          c.DueAt,
		LastReviewedAt: c.LastReviewedAt,
		TimesCorrect:   c.TimesCorrect,
		TimesIncorrect: c.TimesIncorrect,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The content payload is decoded
// according to the card type.
func (c *Card) UnmarshalJSON(data []byte) error {
	var j cardJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	var content Content
	if len(j.Content) > 0 {
		decoded, err := UnmarshalContent(j.Type, j.Content)
		if err != nil {
			return err
		}
		content = decoded
	}
	*c = Card{
		ID:             j.ID,
		OwnerID:        j.OwnerID,
		Type:           j.Type,
		Title:          j.Title,
		Tags:           j.Tags,
		Content:        content,
		EaseFactor:     j.EaseFactor,
		IntervalDays:   j.IntervalDays,
		Repetitions:    j.Repetitions,
		Lapses:         j.Lapses,
		DueAt:          j.DueAt,
		LastReviewedAt: j.LastReviewedAt,
		TimesCorrect:   j.TimesCorrect,
		TimesIncorrect: j.TimesIncorrect,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
	return nil
}
