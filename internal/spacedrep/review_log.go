package spacedrep

import "time"

// ReviewLog records a single committed review outcome.
type ReviewLog struct {
	CardID     string    `json:"card_id"`
	OwnerID    int64     `json:"owner_id"`
	Grade      Grade     `json:"grade"`
	ReviewedAt time.Time `json:"reviewed_at"`
	// Token is the caller-supplied submission token that makes outcome
	// recording idempotent: a (card, token) pair is committed at most once.
	// Empty opts out of deduplication.
	Token string `json:"token,omitempty"`
}
