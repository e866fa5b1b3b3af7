package workspace

import "errors"

// Failure classes for operation execution.
var (
	// ErrContainment indicates a path resolved outside the workspace root.
	ErrContainment = errors.New("path escapes workspace root")

	// ErrPrecondition indicates a required existing/absent target was violated.
	ErrPrecondition = errors.New("operation precondition failed")

	// ErrDeclinedOverwrite indicates the user declined to overwrite an existing file.
	ErrDeclinedOverwrite = errors.New("overwrite declined")

	// ErrWorkspaceUnavailable indicates no usable workspace root.
	ErrWorkspaceUnavailable = errors.New("workspace unavailable")
)

// ContainmentError reports a path that would land outside the workspace.
// The operation touches nothing.
type ContainmentError struct {
	Path   string
	Reason string
}

func (e *ContainmentError) Error() string {
	return "path " + e.Path + " rejected: " + e.Reason
}

// Is allows errors.Is to work with ContainmentError.
func (e *ContainmentError) Is(target error) bool {
	return target == ErrContainment
}

// PreconditionError reports a violated existence precondition.
type PreconditionError struct {
	Op     string
	Path   string
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Reason
}

// Is allows errors.Is to work with PreconditionError.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// DeclinedOverwriteError reports a declined interactive overwrite.
type DeclinedOverwriteError struct {
	Path string
}

func (e *DeclinedOverwriteError) Error() string {
	return "overwrite of " + e.Path + " declined"
}

// Is allows errors.Is to work with DeclinedOverwriteError.
func (e *DeclinedOverwriteError) Is(target error) bool {
	return target == ErrDeclinedOverwrite
}

// WorkspaceUnavailableError reports an unusable workspace root. Unlike
// the per-operation failures above, it fails the whole batch before any
// operation runs.
type WorkspaceUnavailableError struct {
	Root   string
	Reason string
	Err    error
}

func (e *WorkspaceUnavailableError) Error() string {
	msg := "workspace unavailable: " + e.Root
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is allows errors.Is to work with WorkspaceUnavailableError.
func (e *WorkspaceUnavailableError) Is(target error) bool {
	return target == ErrWorkspaceUnavailable
}

func (e *WorkspaceUnavailableError) Unwrap() error {
	return e.Err
}
