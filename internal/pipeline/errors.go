package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the orchestrator.
var (
	// ErrNotFound indicates the content item does not exist.
	ErrNotFound = errors.New("content item not found")

	// ErrConflict indicates the content item is not in a runnable state,
	// typically because another run already claimed it.
	ErrConflict = errors.New("content item is not in a runnable state")
)

// StageError wraps a stage client failure with the name of the failing stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
