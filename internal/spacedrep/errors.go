package spacedrep

import "errors"

// Sentinel errors for the spacedrep package.
// Use errors.Is to check: errors.Is(err, spacedrep.ErrInvalidGrade)
var (
	ErrInvalidGrade  = errors.New("spacedrep: invalid grade")
	ErrInvalidParams = errors.New("spacedrep: params out of bounds")
)
