package spacedrep

import (
	"fmt"
	"time"
)

// Params tunes the scheduling algorithm. A zero-value Params is replaced by
// DefaultParams; a partially filled one must pass validation as-is.
type Params struct {
	// MinEase is the floor the ease factor never crosses downward.
	MinEase float64
	// AgainEasePenalty is subtracted from ease on a failed review.
	AgainEasePenalty float64
	// HardEasePenalty is subtracted from ease on a hard review.
	HardEasePenalty float64
	// EasyEaseBonus is added to ease on an easy review.
	EasyEaseBonus float64
	// HardIntervalMult stretches the previous interval on a hard review.
	HardIntervalMult float64
	// EasyIntervalMult is the extra multiplier applied on top of ease on an
	// easy review.
	EasyIntervalMult float64
	// RelearnInterval is how long after a lapse the card comes due again.
	// Zero means immediately.
	RelearnInterval time.Duration
	// MaxIntervalDays caps how far out a card can be scheduled.
	MaxIntervalDays int
}

// DefaultParams returns the standard SM-2 tuning.
func DefaultParams() Params {
	return Params{
		MinEase:          1.3,
		AgainEasePenalty: 0.20,
		HardEasePenalty:  0.15,
		EasyEaseBonus:    0.15,
		HardIntervalMult: 1.2,
		EasyIntervalMult: 1.3,
		RelearnInterval:  0,
		MaxIntervalDays:  36500,
	}
}

// Validate checks that every field is within its legal range.
func (p Params) Validate() error {
	if p.MinEase <= 0 {
		return fmt.Errorf("%w: min ease %v must be positive", ErrInvalidParams, p.MinEase)
	}
	if p.AgainEasePenalty < 0 || p.HardEasePenalty < 0 || p.EasyEaseBonus < 0 {
		return fmt.Errorf("%w: ease adjustments must be non-negative", ErrInvalidParams)
	}
	if p.HardIntervalMult < 1 {
		return fmt.Errorf("%w: hard interval multiplier %v must be >= 1", ErrInvalidParams, p.HardIntervalMult)
	}
	if p.EasyIntervalMult < 1 {
		return fmt.Errorf("%w: easy interval multiplier %v must be >= 1", ErrInvalidParams, p.EasyIntervalMult)
	}
	if p.RelearnInterval < 0 {
		return fmt.Errorf("%w: relearn interval %v must be non-negative", ErrInvalidParams, p.RelearnInterval)
	}
	if p.MaxIntervalDays < 1 {
		return fmt.Errorf("%w: max interval %d must be positive", ErrInvalidParams, p.MaxIntervalDays)
	}
	return nil
}
