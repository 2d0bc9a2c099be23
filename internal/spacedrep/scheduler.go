package spacedrep

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nturan/flashgram-bot/internal/flashcard"
)

// Scheduler computes review schedules using the SM-2 algorithm.
type Scheduler struct {
	params Params
}

// NewScheduler creates a Scheduler from the given params. A zero-value
// Params is replaced by DefaultParams; anything else is validated as-is.
func NewScheduler(p Params) (*Scheduler, error) {
	if p == (Params{}) {
		p = DefaultParams()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{params: p}, nil
}

// Params returns the scheduler's tuning values.
func (s *Scheduler) Params() Params {
	return s.params
}

// Apply processes one review of the card at the given time and returns the
// updated card and a review log. The input card is not mutated; calling
// Apply twice with the same inputs yields the same outputs.
func (s *Scheduler) Apply(card flashcard.Card, grade Grade, now time.Time) (flashcard.Card, ReviewLog, error) {
	if !grade.IsValid() {
		return card, ReviewLog{}, fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}

	c := card.Clone()

	switch grade {
	case Again:
		c.Repetitions = 0
		c.Lapses++
		c.EaseFactor = math.Max(s.params.MinEase, c.EaseFactor-s.params.AgainEasePenalty)
		c.IntervalDays = 0
		c.TimesIncorrect++
	case Hard:
		c.Repetitions++
		c.EaseFactor = math.Max(s.params.MinEase, c.EaseFactor-s.params.HardEasePenalty)
		c.IntervalDays = maxDays(1, round(float64(c.IntervalDays)*s.params.HardIntervalMult))
		c.TimesCorrect++
	case Good:
		c.Repetitions++
		if c.Repetitions == 1 {
			c.IntervalDays = 1
		} else {
			c.IntervalDays = round(float64(c.IntervalDays) * c.EaseFactor)
		}
		c.TimesCorrect++
	case Easy:
		c.Repetitions++
		c.EaseFactor += s.params.EasyEaseBonus
		base := math.Max(1, float64(c.IntervalDays))
		c.IntervalDays = round(base * c.EaseFactor * s.params.EasyIntervalMult)
		c.TimesCorrect++
	}

	if c.IntervalDays > s.params.MaxIntervalDays {
		c.IntervalDays = s.params.MaxIntervalDays
	}

	if grade == Again {
		c.DueAt = now.Add(s.params.RelearnInterval)
	} else {
		c.DueAt = now.Add(time.Duration(c.IntervalDays) * 24 * time.Hour)
	}
	c.LastReviewedAt = &now
	c.UpdatedAt = now

	log := ReviewLog{
		CardID:     c.ID,
		OwnerID:    c.OwnerID,
		Grade:      grade,
		ReviewedAt: now,
	}
	return c, log, nil
}

// Preview returns the card state that each grade would produce, without
// committing anything. Used to show interval choices before grading.
func (s *Scheduler) Preview(card flashcard.Card, now time.Time) map[Grade]flashcard.Card {
	result := make(map[Grade]flashcard.Card, 4)
	for _, g := range []Grade{Again, Hard, Good, Easy} {
		c, _, _ := s.Apply(card, g, now)
		result[g] = c
	}
	return result
}

// NextDue returns the IDs of all cards due at or before now, most urgent
// first: earliest due date, ascending ID on equal due dates. An empty input
// yields an empty slice.
func NextDue(cards []flashcard.Card, now time.Time) []string {
	var due []flashcard.Card
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].ID < due[j].ID
	})

	ids := make([]string, len(due))
	for i, c := range due {
		ids[i] = c.ID
	}
	return ids
}

// round rounds half away from zero.
func round(v float64) int {
	return int(math.Round(v))
}

func maxDays(a, b int) int {
	if a > b {
		return a
	}
	return b
}
