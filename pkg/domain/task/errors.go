package task

import (
	"errors"
	"fmt"
)

// Domain errors for the task ledger.
var (
	// ErrNotFound indicates no task exists for the given ID or name.
	ErrNotFound = errors.New("task not found")

	// ErrNoCurrentTask indicates no task is currently active.
	ErrNoCurrentTask = errors.New("no active task")

	// ErrInvalidTransition indicates the requested status transition is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEmptyName indicates a task was given a blank name.
	ErrEmptyName = errors.New("task name cannot be empty")

	// ErrConflict indicates a concurrent modification was detected on save.
	ErrConflict = errors.New("task record version conflict")
)

// TransitionError provides details about an invalid transition.
type TransitionError struct {
	TaskID string
	From   Status
	To     Status
	Event  string
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return "the action '" + e.Event + "' is not allowed while task " + e.TaskID + " is in the '" + string(e.From) + "' state"
	}
	return "cannot transition task " + e.TaskID + " from " + string(e.From) + " to " + string(e.To)
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ConflictError is returned when a save fails due to a version mismatch.
type ConflictError struct {
	TaskID   string
	Expected int
	Actual   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on task %s: expected version %d but found %d; reload and retry", e.TaskID, e.Expected, e.Actual)
}

// Is allows errors.Is to work with ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
