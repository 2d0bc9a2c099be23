package session

// Mode represents what a learner's session is currently doing. Idle is both
// the initial and the resting state between reviews.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeReviewing Mode = "reviewing"
	ModeEditing   Mode = "editing"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeIdle, ModeReviewing, ModeEditing:
		return true
	}
	return false
}
