package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for configuration and headless runs. The tick pipeline
// itself never fails.
var (
	// ErrUnknownVariant indicates a robot variant name missing from the registry.
	ErrUnknownVariant = errors.New("robonav: unknown robot variant")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("robonav: invalid configuration")

	// ErrNotArrived indicates a run ended before the robot reached its target.
	ErrNotArrived = errors.New("robonav: target not reached")
)

// RunError wraps an error with the tick and pose it occurred at.
type RunError struct {
	Tick    int
	Pose    Pose
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("tick %d at %s: %v", e.Tick, e.Pose, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
