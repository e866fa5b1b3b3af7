package domain

import "context"

// VersionControl runs the two actions shuttle delegates to an external
// VCS. Implementations report failure through the returned error;
// shuttle never inspects repository internals.
type VersionControl interface {
	// IsAvailable reports whether the workspace is under version control
	// and the VCS binary can be invoked.
	IsAvailable(ctx context.Context) bool

	// StageAndCommit stages every change in the working tree and records
	// a commit with the given message, as one action.
	StageAndCommit(ctx context.Context, message string) error

	// DiscardAll throws away every uncommitted change in the working
	// tree, tracked and untracked. Not scoped to any file list.
	DiscardAll(ctx context.Context) error
}
