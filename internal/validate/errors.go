package validate

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every StageError
var ErrValidation = errors.New("validation failed")

// StageError reports a failed plausibility or invariant check after a
// pipeline stage
type StageError struct {
	Stage   string
	Check   string
	Got     any
	Message string
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: check %s failed (got %v): %s", e.Stage, e.Check, e.Got, e.Message)
}

// Is implements errors.Is support
func (e *StageError) Is(target error) bool {
	return target == ErrValidation
}

// NewStageError creates a new StageError
func NewStageError(stage, check string, got any, format string, args ...any) *StageError {
	return &StageError{Stage: stage, Check: check, Got: got, Message: fmt.Sprintf(format, args...)}
}
