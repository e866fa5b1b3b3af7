package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/shuttle/pkg/application"
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
	"github.com/felixgeelhaar/shuttle/pkg/workspace"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var transErr *task.TransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(
			transErr.Error(),
			"Run 'shuttle status' to see where the task stands",
			err,
		)
	}

	switch {
	case errors.Is(err, ErrNotInitialized):
		return NewCLIError("workspace is not initialized", "Run 'shuttle init' first", err)
	case errors.Is(err, task.ErrNoCurrentTask):
		return NewCLIError("no active task", "Run 'shuttle task start <name>' to begin one", err)
	case errors.Is(err, task.ErrNotFound):
		return NewCLIError("task not found", "Run 'shuttle task list' to see known tasks", err)
	case errors.Is(err, task.ErrEmptyName):
		return NewCLIError("task name is empty", "Give the task a short, descriptive name", err)
	case errors.Is(err, application.ErrNoOperations):
		return NewCLIError("no operations found in the reply",
			"Make sure the reply contains <<<CREATE/DELETE/RENAME/FILE>>> blocks; 'shuttle prompt' includes the format instructions", err)
	case errors.Is(err, application.ErrVCSUnavailable):
		return NewCLIError("version control is not available",
			"Run 'git init' in the workspace, or commit manually", err)
	case errors.Is(err, application.ErrUndoDeclined):
		return NewCLIError("undo cancelled", "", err)
	case errors.Is(err, workspace.ErrWorkspaceUnavailable):
		return NewCLIError("workspace root is not usable",
			"Check the --workspace flag points at an existing directory", err)
	}

	return err
}
