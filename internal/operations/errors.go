package operations

import (
	"fmt"
)

// StepError reports the step a pipeline run failed at.
// The cause keeps its type, so callers can still inspect it with errors.As.
type StepError struct {
	Step  string `json:"step"`
	Name  string `json:"name"`
	Cause error  `json:"-"`
}

// Error implements the error interface
func (e *StepError) Error() string {
	if e == nil {
		return "unknown step error"
	}
	return fmt.Sprintf("step %s (%s) failed: %v", e.Step, e.Name, e.Cause)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewStepError wraps cause with the identity of the failing step
func NewStepError(step Step, cause error) *StepError {
	return &StepError{Step: step.ID(), Name: step.Name(), Cause: cause}
}

// errMissingInput is returned by Validate when an earlier step's output is absent
func errMissingInput(stepID, input string) error {
	return fmt.Errorf("step %s requires %s, which no earlier step produced", stepID, input)
}
