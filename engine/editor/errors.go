package editor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches every *ValidationFailure.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current session state.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ValidationFailure aborts a save. Nothing is written and no network call
// is made.
type ValidationFailure struct {
	Tab    string
	Fields []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("invalid fields on tab %s: %s", e.Tab, strings.Join(e.Fields, ", "))
}

func (e *ValidationFailure) Is(target error) bool {
	return target == ErrValidation
}

func transitionError(op string, state State) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, state)
}
