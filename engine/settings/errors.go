package settings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvariantViolation matches every *InvariantViolation.
var ErrInvariantViolation = errors.New("settings duality invariant violated")

// InvariantViolation reports keys lost or duplicated between the included
// settings and the template variables.
type InvariantViolation struct {
	ComponentID string
	// Missing keys appear in neither projection.
	Missing []string
	// Duplicated keys appear in both projections.
	Duplicated []string
	// Unresolved included names have no setting definition.
	Unresolved []string
}

func (e *InvariantViolation) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing ["+strings.Join(e.Missing, ", ")+"]")
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, "duplicated ["+strings.Join(e.Duplicated, ", ")+"]")
	}
	if len(e.Unresolved) > 0 {
		parts = append(parts, "unresolved ["+strings.Join(e.Unresolved, ", ")+"]")
	}
	return fmt.Sprintf("component %s: settings invariant violated: %s", e.ComponentID, strings.Join(parts, "; "))
}

func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariantViolation
}

func (e *InvariantViolation) empty() bool {
	return len(e.Missing) == 0 && len(e.Duplicated) == 0 && len(e.Unresolved) == 0
}
