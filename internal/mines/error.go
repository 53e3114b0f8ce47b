package mines

import "errors"

// ErrInvalidConfiguration is returned when game parameters cannot produce a
// playable board.
var ErrInvalidConfiguration = errors.New("invalid game configuration")

// AssertionError signals a broken internal invariant (inconsistent grid or
// constraint state). It should propagate instead of being swallowed.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}

func NewAssertionError(message string) AssertionError {
	return AssertionError{message}
}
