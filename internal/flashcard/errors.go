package flashcard

import "errors"

// Sentinel errors for the flashcard package.
// Use errors.Is to check: errors.Is(err, flashcard.ErrInvalidContent)
var (
	ErrInvalidContent  = errors.New("flashcard: invalid content")
	ErrUnknownCardType = errors.New("flashcard: unknown card type")
)
