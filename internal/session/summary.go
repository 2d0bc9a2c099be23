package session

import "time"

// Summary describes a finished review session.
type Summary struct {
	OwnerID       int64         `json:"owner_id"`
	Duration      time.Duration `json:"duration"`
	TotalReviewed int           `json:"total_reviewed"`
	TotalPassed   int           `json:"total_passed"`
	Accuracy      float64       `json:"accuracy"`
	Stats         Stats         `json:"stats"`
}

// buildSummary creates a Summary from a session whose queue just emptied.
func buildSummary(s *Session, now time.Time) *Summary {
	total := s.Stats.Total()
	var accuracy float64
	if total > 0 {
		accuracy = float64(s.Stats.Passed()) / float64(total)
	}
	return &Summary{
		OwnerID:       s.OwnerID,
		Duration:      now.Sub(s.StartedAt),
		TotalReviewed: total,
		TotalPassed:   s.Stats.Passed(),
		Accuracy:      accuracy,
		Stats:         s.Stats,
	}
}
