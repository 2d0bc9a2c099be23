package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

const testOwner int64 = 42

// fakeStore is a deterministic in-memory Store for engine tests. Error
// fields inject faults on the matching operation.
type fakeStore struct {
	sessions map[int64]*Session
	cards    map[string]*flashcard.Card
	tokens   map[string]bool // committed (card, token) pairs

	LoadSessionErr error
	SaveSessionErr error
	LoadCardErr    error
	QueryDueErr    error
	CommitErr      error

	Commits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[int64]*Session),
		cards:    make(map[string]*flashcard.Card),
		tokens:   make(map[string]bool),
	}
}

func (f *fakeStore) LoadSession(_ context.Context, ownerID int64) (*Session, error) {
	if f.LoadSessionErr != nil {
		return nil, f.LoadSessionErr
	}
	sess, ok := f.sessions[ownerID]
	if !ok {
		return nil, fmt.Errorf("%w: session %d", ErrNotFound, ownerID)
	}
	cp := *sess
	cp.Queue = append([]string(nil), sess.Queue...)
	return &cp, nil
}

func (f *fakeStore) SaveSession(_ context.Context, sess *Session) error {
	if f.SaveSessionErr != nil {
		return f.SaveSessionErr
	}
	cp := *sess
	cp.Queue = append([]string(nil), sess.Queue...)
	f.sessions[sess.OwnerID] = &cp
	return nil
}

func (f *fakeStore) LoadCard(_ context.Context, id string) (*flashcard.Card, error) {
	if f.LoadCardErr != nil {
		return nil, f.LoadCardErr
	}
	card, ok := f.cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: card %s", ErrNotFound, id)
	}
	cp := card.Clone()
	return &cp, nil
}

func (f *fakeStore) SaveCard(_ context.Context, card *flashcard.Card) error {
	cp := card.Clone()
	f.cards[card.ID] = &cp
	return nil
}

func (f *fakeStore) QueryDue(_ context.Context, ownerID int64, now time.Time) ([]flashcard.Card, error) {
	if f.QueryDueErr != nil {
		return nil, f.QueryDueErr
	}
	var due []flashcard.Card
	for _, c := range f.cards {
		if c.OwnerID == ownerID && c.IsDue(now) {
			due = append(due, c.Clone())
		}
	}
	return due, nil
}

func (f *fakeStore) CommitReview(_ context.Context, card *flashcard.Card, sess *Session, log *spacedrep.ReviewLog) error {
	if f.CommitErr != nil {
		return f.CommitErr
	}
	if log.Token != "" {
		key := log.CardID + "/" + log.Token
		if f.tokens[key] {
			return fmt.Errorf("%w: card %s token %s", ErrDuplicateSubmission, log.CardID, log.Token)
		}
		f.tokens[key] = true
	}
	cp := card.Clone()
	f.cards[card.ID] = &cp
	sp := *sess
	sp.Queue = append([]string(nil), sess.Queue...)
	f.sessions[sess.OwnerID] = &sp
	f.Commits++
	return nil
}

func testEngine(store Store) *Engine {
	return NewEngine(store, nil, Config{})
}

func seedCard(f *fakeStore, id string, dueOffset time.Duration) flashcard.Card {
	c := flashcard.New(id, testOwner, flashcard.TwoSided{Front: "Hund", Back: "dog"}, t0)
	c.DueAt = t0.Add(dueOffset)
	f.cards[id] = &c
	return c
}

// --- StartReview ---

func TestStartReviewReturnsOldestDueCard(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01B", -time.Hour)
	seedCard(f, "01A", -2*time.Hour)
	seedCard(f, "01C", time.Hour) // not due
	e := testEngine(f)

	card, summary, err := e.StartReview(t.Context(), testOwner, t0)
	if err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	if summary != nil {
		t.Errorf("summary = %+v, want nil", summary)
	}
	if card == nil || card.ID != "01A" {
		t.Fatalf("card = %+v, want 01A", card)
	}

	sess := f.sessions[testOwner]
	if sess.Mode != ModeReviewing {
		t.Errorf("Mode = %q, want reviewing", sess.Mode)
	}
	if sess.ActiveCardID != "01A" {
		t.Errorf("ActiveCardID = %q, want 01A", sess.ActiveCardID)
	}
	if len(sess.Queue) != 1 || sess.Queue[0] != "01B" {
		t.Errorf("Queue = %v, want [01B]", sess.Queue)
	}
}

func TestStartReviewNothingDueStaysIdle(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", 24*time.Hour)
	e := testEngine(f)

	card, summary, err := e.StartReview(t.Context(), testOwner, t0)
	if err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	if card != nil || summary != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", card, summary)
	}
	if sess, ok := f.sessions[testOwner]; ok && sess.Mode != ModeIdle {
		t.Errorf("Mode = %q, want idle", sess.Mode)
	}
}

func TestStartReviewIdempotentWhileReviewing(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	seedCard(f, "01B", -time.Minute)
	e := testEngine(f)

	first, _, err := e.StartReview(t.Context(), testOwner, t0)
	if err != nil {
		t.Fatalf("first StartReview: %v", err)
	}
	second, _, err := e.StartReview(t.Context(), testOwner, t0)
	if err != nil {
		t.Fatalf("second StartReview: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second start returned %q, want same card %q", second.ID, first.ID)
	}
	sess := f.sessions[testOwner]
	if len(sess.Queue) != 1 {
		t.Errorf("Queue = %v, want single remaining entry", sess.Queue)
	}
}

func TestStartReviewWhileEditingFails(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)

	if err := e.StartEdit(t.Context(), testOwner, "01A"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	_, _, err := e.StartReview(t.Context(), testOwner, t0)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
}

func TestStartReviewCapsQueue(t *testing.T) {
	f := newFakeStore()
	for i := 0; i < 30; i++ {
		seedCard(f, fmt.Sprintf("%02d", i), -time.Hour)
	}
	e := NewEngine(f, nil, Config{CardsPerSession: 5})

	if _, _, err := e.StartReview(t.Context(), testOwner, t0); err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	sess := f.sessions[testOwner]
	// Active card plus remaining queue equals the cap.
	if got := 1 + len(sess.Queue); got != 5 {
		t.Errorf("session size = %d, want 5", got)
	}
}

func TestStartReviewStoreUnavailable(t *testing.T) {
	f := newFakeStore()
	f.QueryDueErr = fmt.Errorf("%w: connection refused", ErrStoreUnavailable)
	e := testEngine(f)

	_, _, err := e.StartReview(t.Context(), testOwner, t0)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
}

// --- ReportOutcome ---

func startedSession(t *testing.T, f *fakeStore, e *Engine) *flashcard.Card {
	t.Helper()
	card, _, err := e.StartReview(t.Context(), testOwner, t0)
	if err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	if card == nil {
		t.Fatal("StartReview returned no card")
	}
	return card
}

func TestReportOutcomeAdvancesQueue(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -2*time.Hour)
	seedCard(f, "01B", -time.Hour)
	e := testEngine(f)
	first := startedSession(t, f, e)

	next, summary, err := e.ReportOutcome(t.Context(), testOwner, first.ID, spacedrep.Good, "tok-1", t0)
	if err != nil {
		t.Fatalf("ReportOutcome: %v", err)
	}
	if summary != nil {
		t.Errorf("summary = %+v, want nil mid-session", summary)
	}
	if next == nil || next.ID != "01B" {
		t.Fatalf("next = %+v, want 01B", next)
	}

	sess := f.sessions[testOwner]
	if sess.ActiveCardID != "01B" || len(sess.Queue) != 0 {
		t.Errorf("session = active %q queue %v, want 01B []", sess.ActiveCardID, sess.Queue)
	}
	if sess.Stats.Good != 1 {
		t.Errorf("Stats.Good = %d, want 1", sess.Stats.Good)
	}

	got := f.cards["01A"]
	if got.Repetitions != 1 || got.IntervalDays != 1 {
		t.Errorf("card not rescheduled: rep=%d interval=%d", got.Repetitions, got.IntervalDays)
	}
}

func TestReportOutcomeLastCardReturnsSummary(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)
	card := startedSession(t, f, e)

	end := t0.Add(90 * time.Second)
	next, summary, err := e.ReportOutcome(t.Context(), testOwner, card.ID, spacedrep.Easy, "tok-1", end)
	if err != nil {
		t.Fatalf("ReportOutcome: %v", err)
	}
	if next != nil {
		t.Errorf("next = %+v, want nil at queue end", next)
	}
	if summary == nil {
		t.Fatal("summary = nil, want session summary")
	}
	if summary.TotalReviewed != 1 || summary.TotalPassed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", summary.Duration)
	}
	if summary.Accuracy != 1.0 {
		t.Errorf("Accuracy = %v, want 1.0", summary.Accuracy)
	}

	sess := f.sessions[testOwner]
	if sess.Mode != ModeIdle || sess.ActiveCardID != "" || len(sess.Queue) != 0 {
		t.Errorf("session not reset: %+v", sess)
	}
}

func TestReportOutcomeMismatchedCardLeavesStateUntouched(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -2*time.Hour)
	seedCard(f, "01B", -time.Hour)
	e := testEngine(f)
	startedSession(t, f, e)

	before := f.cards["01B"].Clone()
	_, _, err := e.ReportOutcome(t.Context(), testOwner, "01B", spacedrep.Good, "tok-1", t0)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("error = %v, want ErrInvalidState", err)
	}

	sess := f.sessions[testOwner]
	if sess.ActiveCardID != "01A" {
		t.Errorf("ActiveCardID = %q, want 01A (unchanged)", sess.ActiveCardID)
	}
	if sess.Stats.Total() != 0 {
		t.Errorf("Stats = %+v, want empty", sess.Stats)
	}
	after := f.cards["01B"]
	if after.Repetitions != before.Repetitions || !after.DueAt.Equal(before.DueAt) {
		t.Errorf("card 01B mutated: %+v", after)
	}
	if f.Commits != 0 {
		t.Errorf("Commits = %d, want 0", f.Commits)
	}
}

func TestReportOutcomeWhileIdleFails(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)

	_, _, err := e.ReportOutcome(t.Context(), testOwner, "01A", spacedrep.Good, "tok-1", t0)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
}

func TestReportOutcomeInvalidGradeRejectedBeforeStore(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)
	startedSession(t, f, e)

	_, _, err := e.ReportOutcome(t.Context(), testOwner, "01A", spacedrep.Grade(9), "tok-1", t0)
	if !errors.Is(err, spacedrep.ErrInvalidGrade) {
		t.Fatalf("error = %v, want ErrInvalidGrade", err)
	}
	if f.Commits != 0 {
		t.Errorf("Commits = %d, want 0", f.Commits)
	}
	if f.sessions[testOwner].Stats.Total() != 0 {
		t.Errorf("stats recorded for invalid grade")
	}
}

func TestReportOutcomeDuplicateTokenRejected(t *testing.T) {
	// A failed card comes due again immediately; a stale redelivery of the
	// original message then passes the active-card check, and only the
	// (card, token) guard catches it.
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)
	startedSession(t, f, e)

	if _, _, err := e.ReportOutcome(t.Context(), testOwner, "01A", spacedrep.Again, "tok-1", t0); err != nil {
		t.Fatalf("first ReportOutcome: %v", err)
	}
	if _, _, err := e.StartReview(t.Context(), testOwner, t0); err != nil {
		t.Fatalf("second StartReview: %v", err)
	}

	cardBefore := f.cards["01A"].Clone()

	_, _, err := e.ReportOutcome(t.Context(), testOwner, "01A", spacedrep.Again, "tok-1", t0)
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("error = %v, want ErrDuplicateSubmission", err)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("duplicate submission should match ErrInvalidState")
	}

	sessAfter := f.sessions[testOwner]
	if sessAfter.Mode != ModeReviewing || sessAfter.ActiveCardID != "01A" {
		t.Errorf("session advanced on duplicate: %+v", sessAfter)
	}
	if sessAfter.Stats.Total() != 0 {
		t.Errorf("stats recorded on duplicate: %+v", sessAfter.Stats)
	}
	cardAfter := f.cards["01A"]
	if cardAfter.Lapses != cardBefore.Lapses {
		t.Errorf("card mutated on duplicate: lapses = %d, want %d", cardAfter.Lapses, cardBefore.Lapses)
	}
}

func TestReportOutcomeCommitFailureLeavesStoreUntouched(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)
	startedSession(t, f, e)

	f.CommitErr = fmt.Errorf("%w: disk full", ErrStoreUnavailable)
	_, _, err := e.ReportOutcome(t.Context(), testOwner, "01A", spacedrep.Good, "tok-1", t0)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}

	sess := f.sessions[testOwner]
	if sess.Mode != ModeReviewing || sess.ActiveCardID != "01A" {
		t.Errorf("session advanced despite failed commit: %+v", sess)
	}
	card := f.cards["01A"]
	if card.Repetitions != 0 {
		t.Errorf("card mutated despite failed commit: %+v", card)
	}

	// The operation is retryable once the store recovers.
	f.CommitErr = nil
	_, summary, err := e.ReportOutcome(t.Context(), testOwner, "01A", spacedrep.Good, "tok-1", t0)
	if err != nil {
		t.Fatalf("retry ReportOutcome: %v", err)
	}
	if summary == nil {
		t.Error("retry should finish the session")
	}
}

func TestFullSessionStatsAndAccuracy(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -4*time.Hour)
	seedCard(f, "01B", -3*time.Hour)
	seedCard(f, "01C", -2*time.Hour)
	seedCard(f, "01D", -time.Hour)
	e := testEngine(f)
	startedSession(t, f, e)

	grades := map[string]spacedrep.Grade{
		"01A": spacedrep.Good,
		"01B": spacedrep.Again,
		"01C": spacedrep.Easy,
		"01D": spacedrep.Hard,
	}
	current := "01A"
	var summary *Summary
	for i := 0; i < 4; i++ {
		next, sum, err := e.ReportOutcome(t.Context(), testOwner, current, grades[current], fmt.Sprintf("tok-%d", i), t0.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("ReportOutcome %s: %v", current, err)
		}
		if next != nil {
			current = next.ID
		}
		summary = sum
	}

	if summary == nil {
		t.Fatal("no summary after draining queue")
	}
	want := Stats{Again: 1, Hard: 1, Good: 1, Easy: 1}
	if summary.Stats != want {
		t.Errorf("Stats = %+v, want %+v", summary.Stats, want)
	}
	if summary.TotalReviewed != 4 || summary.TotalPassed != 3 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Accuracy != 0.75 {
		t.Errorf("Accuracy = %v, want 0.75", summary.Accuracy)
	}
}

// --- StartEdit / FinishEdit ---

func TestEditFromIdleAndBack(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)

	if err := e.StartEdit(t.Context(), testOwner, "01A"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	sess := f.sessions[testOwner]
	if sess.Mode != ModeEditing || sess.EditingCardID != "01A" || sess.PriorMode != ModeIdle {
		t.Errorf("session = %+v", sess)
	}

	if err := e.FinishEdit(t.Context(), testOwner); err != nil {
		t.Fatalf("FinishEdit: %v", err)
	}
	sess = f.sessions[testOwner]
	if sess.Mode != ModeIdle || sess.EditingCardID != "" || sess.PriorMode != "" {
		t.Errorf("session after finish = %+v", sess)
	}
}

func TestEditSuspendsAndResumesReview(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -2*time.Hour)
	seedCard(f, "01B", -time.Hour)
	e := testEngine(f)
	card := startedSession(t, f, e)

	if err := e.StartEdit(t.Context(), testOwner, "01B"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	sess := f.sessions[testOwner]
	if sess.Mode != ModeEditing || sess.PriorMode != ModeReviewing {
		t.Errorf("session = %+v", sess)
	}
	if sess.ActiveCardID != card.ID {
		t.Errorf("ActiveCardID = %q, want %q preserved during edit", sess.ActiveCardID, card.ID)
	}

	if err := e.FinishEdit(t.Context(), testOwner); err != nil {
		t.Fatalf("FinishEdit: %v", err)
	}
	sess = f.sessions[testOwner]
	if sess.Mode != ModeReviewing || sess.ActiveCardID != card.ID || len(sess.Queue) != 1 {
		t.Errorf("review not resumed: %+v", sess)
	}

	// Review continues where it left off.
	next, _, err := e.ReportOutcome(t.Context(), testOwner, card.ID, spacedrep.Good, "tok-1", t0)
	if err != nil {
		t.Fatalf("ReportOutcome after edit: %v", err)
	}
	if next == nil || next.ID != "01B" {
		t.Errorf("next = %+v, want 01B", next)
	}
}

func TestStartEditUnknownCard(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	err := e.StartEdit(t.Context(), testOwner, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestStartEditForeignCardHidden(t *testing.T) {
	f := newFakeStore()
	c := flashcard.New("01A", 7, flashcard.TwoSided{Front: "x", Back: "y"}, t0)
	f.cards["01A"] = &c
	e := testEngine(f)

	err := e.StartEdit(t.Context(), testOwner, "01A")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for another owner's card", err)
	}
}

func TestStartEditWhileEditingFails(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	seedCard(f, "01B", -time.Hour)
	e := testEngine(f)

	if err := e.StartEdit(t.Context(), testOwner, "01A"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	if err := e.StartEdit(t.Context(), testOwner, "01B"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
}

func TestFinishEditWithoutEditingFails(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	if err := e.FinishEdit(t.Context(), testOwner); !errors.Is(err, ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
}

// --- Cancel ---

func TestCancelClearsReview(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -2*time.Hour)
	seedCard(f, "01B", -time.Hour)
	e := testEngine(f)
	card := startedSession(t, f, e)

	if _, _, err := e.ReportOutcome(t.Context(), testOwner, card.ID, spacedrep.Good, "tok-1", t0); err != nil {
		t.Fatalf("ReportOutcome: %v", err)
	}
	if err := e.Cancel(t.Context(), testOwner); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	sess := f.sessions[testOwner]
	if sess.Mode != ModeIdle || sess.ActiveCardID != "" || len(sess.Queue) != 0 {
		t.Errorf("session = %+v, want cleared idle", sess)
	}

	// The outcome committed before cancel stays committed.
	got := f.cards["01A"]
	if got.Repetitions != 1 {
		t.Errorf("committed outcome undone: rep = %d, want 1", got.Repetitions)
	}
}

func TestCancelWithoutSessionIsNoOp(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	if err := e.Cancel(t.Context(), testOwner); err != nil {
		t.Errorf("Cancel: %v, want nil", err)
	}
}

func TestCancelFromEditing(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)

	if err := e.StartEdit(t.Context(), testOwner, "01A"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	if err := e.Cancel(t.Context(), testOwner); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	sess := f.sessions[testOwner]
	if sess.Mode != ModeIdle || sess.EditingCardID != "" || sess.PriorMode != "" {
		t.Errorf("session = %+v, want cleared idle", sess)
	}
}

// --- GetSessionState ---

func TestGetSessionStateUnknownOwnerIsIdle(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	sess, err := e.GetSessionState(t.Context(), testOwner)
	if err != nil {
		t.Fatalf("GetSessionState: %v", err)
	}
	if sess.OwnerID != testOwner || sess.Mode != ModeIdle {
		t.Errorf("session = %+v, want idle for owner %d", sess, testOwner)
	}
}

func TestGetSessionStateSurvivesRestart(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -time.Hour)
	e := testEngine(f)
	card := startedSession(t, f, e)

	// A fresh engine over the same store sees the live session.
	e2 := testEngine(f)
	sess, err := e2.GetSessionState(t.Context(), testOwner)
	if err != nil {
		t.Fatalf("GetSessionState: %v", err)
	}
	if sess.Mode != ModeReviewing || sess.ActiveCardID != card.ID {
		t.Errorf("session = %+v, want reviewing %q", sess, card.ID)
	}
}

// --- invariants ---

func TestActiveCardInvariantAcrossTransitions(t *testing.T) {
	f := newFakeStore()
	seedCard(f, "01A", -2*time.Hour)
	seedCard(f, "01B", -time.Hour)
	e := testEngine(f)

	check := func(step string) {
		t.Helper()
		sess, err := e.GetSessionState(t.Context(), testOwner)
		if err != nil {
			t.Fatalf("%s: GetSessionState: %v", step, err)
		}
		wantActive := sess.Mode == ModeReviewing ||
			(sess.Mode == ModeEditing && sess.PriorMode == ModeReviewing)
		if wantActive && sess.ActiveCardID == "" {
			t.Errorf("%s: active card missing in %s", step, sess.Mode)
		}
		if !wantActive && sess.ActiveCardID != "" {
			t.Errorf("%s: stray active card %q in %s", step, sess.ActiveCardID, sess.Mode)
		}
	}

	check("initial")
	if _, _, err := e.StartReview(t.Context(), testOwner, t0); err != nil {
		t.Fatal(err)
	}
	check("reviewing")
	if err := e.StartEdit(t.Context(), testOwner, "01B"); err != nil {
		t.Fatal(err)
	}
	check("editing over review")
	if err := e.FinishEdit(t.Context(), testOwner); err != nil {
		t.Fatal(err)
	}
	check("resumed")
	if _, _, err := e.ReportOutcome(t.Context(), testOwner, "01A", spacedrep.Good, "tok-1", t0); err != nil {
		t.Fatal(err)
	}
	check("advanced")
	if err := e.Cancel(t.Context(), testOwner); err != nil {
		t.Fatal(err)
	}
	check("cancelled")
}
