package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

// Config bounds session behavior.
type Config struct {
	// CardsPerSession caps how many due cards one session takes on.
	CardsPerSession int
}

// DefaultConfig returns the standard session limits.
func DefaultConfig() Config {
	return Config{CardsPerSession: 20}
}

// Engine drives per-learner review sessions against an injected Store.
// It is stateless between calls, so one Engine serves all learners.
//
// The engine is not internally synchronized: the caller must serialize
// operations for the same owner (one worker per owner, or a per-owner
// lock). Operations for different owners are independent.
type Engine struct {
	store     Store
	scheduler *spacedrep.Scheduler
	cfg       Config
}

// NewEngine creates an Engine. A nil scheduler gets the default SM-2
// tuning; a zero config gets DefaultConfig.
func NewEngine(store Store, scheduler *spacedrep.Scheduler, cfg Config) *Engine {
	if scheduler == nil {
		scheduler, _ = spacedrep.NewScheduler(spacedrep.Params{})
	}
	if cfg.CardsPerSession <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{store: store, scheduler: scheduler, cfg: cfg}
}

// StartReview begins a review session from idle: it snapshots the owner's
// due queue and returns the first card. With nothing due it stays idle and
// returns (nil, nil, nil). Called while already reviewing it is a no-op
// that returns the card currently in flight; called while editing it fails
// with ErrInvalidState.
func (e *Engine) StartReview(ctx context.Context, ownerID int64, now time.Time) (*flashcard.Card, *Summary, error) {
	sess, err := e.loadOrNewSession(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	switch sess.Mode {
	case ModeReviewing:
		// Idempotent start: hand back the card already in flight.
		card, err := e.store.LoadCard(ctx, sess.ActiveCardID)
		if err != nil {
			return nil, nil, fmt.Errorf("load active card: %w", err)
		}
		return card, nil, nil
	case ModeEditing:
		return nil, nil, fmt.Errorf("%w: cannot start review while editing", ErrInvalidState)
	}

	cards, err := e.store.QueryDue(ctx, ownerID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("query due cards: %w", err)
	}

	queue := spacedrep.NextDue(cards, now)
	if len(queue) > e.cfg.CardsPerSession {
		queue = queue[:e.cfg.CardsPerSession]
	}
	if len(queue) == 0 {
		slog.Debug("nothing due", "owner", ownerID)
		return nil, nil, nil
	}

	sess.beginReview(queue, now)

	card, err := e.store.LoadCard(ctx, sess.ActiveCardID)
	if err != nil {
		return nil, nil, fmt.Errorf("load active card: %w", err)
	}
	if err := e.store.SaveSession(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}

	slog.Debug("review started", "owner", ownerID, "queued", len(queue))
	return card, nil, nil
}

// ReportOutcome grades the active card and advances the session. It returns
// the next card, or a summary once the queue empties. The card update, the
// session update and the review log are committed as one atomic unit; on
// any failure nothing is persisted and the call may be retried whole.
//
// The submission token makes the call idempotent: a (card, token) pair is
// committed at most once, a repeat fails with ErrDuplicateSubmission. An
// empty token opts out of deduplication.
func (e *Engine) ReportOutcome(ctx context.Context, ownerID int64, cardID string, grade spacedrep.Grade, token string, now time.Time) (*flashcard.Card, *Summary, error) {
	if !grade.IsValid() {
		return nil, nil, fmt.Errorf("%w: %d", spacedrep.ErrInvalidGrade, int(grade))
	}

	sess, err := e.store.LoadSession(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: no active review", ErrInvalidState)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	if sess.Mode != ModeReviewing {
		return nil, nil, fmt.Errorf("%w: report outcome while %s", ErrInvalidState, sess.Mode)
	}
	if cardID != sess.ActiveCardID {
		return nil, nil, fmt.Errorf("%w: card %s is not the active card", ErrInvalidState, cardID)
	}

	card, err := e.store.LoadCard(ctx, cardID)
	if err != nil {
		return nil, nil, fmt.Errorf("load card: %w", err)
	}

	updated, reviewLog, err := e.scheduler.Apply(*card, grade, now)
	if err != nil {
		return nil, nil, err
	}
	reviewLog.Token = token

	sess.Stats.Record(grade)
	reviewing := sess.advance()

	if err := e.store.CommitReview(ctx, &updated, sess, &reviewLog); err != nil {
		return nil, nil, fmt.Errorf("commit review: %w", err)
	}

	if !reviewing {
		summary := buildSummary(sess, now)
		slog.Debug("review finished", "owner", ownerID,
			"reviewed", summary.TotalReviewed, "passed", summary.TotalPassed)
		return nil, summary, nil
	}

	next, err := e.store.LoadCard(ctx, sess.ActiveCardID)
	if err != nil {
		return nil, nil, fmt.Errorf("load next card: %w", err)
	}
	return next, nil, nil
}

// StartEdit suspends the session and enters editing mode for the card.
// Valid from idle or reviewing; the review queue survives untouched. The
// content change itself happens outside the engine, between StartEdit and
// FinishEdit.
func (e *Engine) StartEdit(ctx context.Context, ownerID int64, cardID string) error {
	sess, err := e.loadOrNewSession(ctx, ownerID)
	if err != nil {
		return err
	}
	if sess.Mode == ModeEditing {
		return fmt.Errorf("%w: already editing card %s", ErrInvalidState, sess.EditingCardID)
	}

	card, err := e.store.LoadCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("load card for edit: %w", err)
	}
	if card.OwnerID != ownerID {
		return fmt.Errorf("%w: card %s", ErrNotFound, cardID)
	}

	sess.startEdit(cardID)
	if err := e.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	slog.Debug("edit started", "owner", ownerID, "card", cardID, "prior", sess.PriorMode)
	return nil
}

// FinishEdit leaves editing mode and restores the suspended mode with the
// queue and active card untouched.
func (e *Engine) FinishEdit(ctx context.Context, ownerID int64) error {
	sess, err := e.store.LoadSession(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: not editing", ErrInvalidState)
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess.Mode != ModeEditing {
		return fmt.Errorf("%w: finish edit while %s", ErrInvalidState, sess.Mode)
	}

	sess.finishEdit()
	if err := e.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	slog.Debug("edit finished", "owner", ownerID, "mode", sess.Mode)
	return nil
}

// Cancel abandons the session from any mode and returns the owner to idle.
// Outcomes already committed stay committed. Cancelling with no live
// session is a no-op.
func (e *Engine) Cancel(ctx context.Context, ownerID int64) error {
	sess, err := e.store.LoadSession(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	sess.cancel()
	if err := e.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	slog.Debug("session cancelled", "owner", ownerID)
	return nil
}

// GetSessionState returns the owner's session for read-only introspection,
// e.g. to resume after a process restart. An owner with no stored session
// is reported as idle.
func (e *Engine) GetSessionState(ctx context.Context, ownerID int64) (*Session, error) {
	sess, err := e.store.LoadSession(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return New(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (e *Engine) loadOrNewSession(ctx context.Context, ownerID int64) (*Session, error) {
	sess, err := e.store.LoadSession(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return New(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}
