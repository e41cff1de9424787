package motif

import "errors"

// Errors returned by profile construction, scoring and sampling. Callers
// should test for them with errors.Is; returned errors carry context.
var (
	ErrInvalidMotifSet        = errors.New("invalid motif set")
	ErrLengthMismatch         = errors.New("length mismatch")
	ErrSequenceTooShort       = errors.New("sequence too short")
	ErrDegenerateDistribution = errors.New("degenerate distribution")
	ErrEmptyInput             = errors.New("empty input")
)
