// Package vcs shells out to the git binary for the two actions shuttle
// delegates to version control: stage-and-commit and whole-tree discard.
package vcs

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
)

// commandTimeout bounds every git invocation. A stalled git process
// must not stall a commit or undo forever.
const commandTimeout = 30 * time.Second

// GitRunner implements domain.VersionControl against the workspace
// root's repository.
type GitRunner struct {
	dir string
}

var _ domain.VersionControl = (*GitRunner)(nil)

// NewGitRunner returns a runner invoking git inside dir.
func NewGitRunner(dir string) *GitRunner {
	return &GitRunner{dir: dir}
}

// IsAvailable reports whether dir sits inside a git work tree and the
// git binary is invocable.
func (g *GitRunner) IsAvailable(ctx context.Context) bool {
	out, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// StageAndCommit stages every working-tree change and commits it in one
// action.
func (g *GitRunner) StageAndCommit(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("commit message must not be empty")
	}

	if _, err := g.run(ctx, "add", "-A"); err != nil {
		return err
	}
	if _, err := g.run(ctx, "commit", "-m", message); err != nil {
		return err
	}
	return nil
}

// DiscardAll resets tracked files to HEAD and removes untracked files
// and directories. The whole tree, not a file list. The .shuttle store
// must survive the sweep: it holds the record of the undo itself.
func (g *GitRunner) DiscardAll(ctx context.Context) error {
	if _, err := g.run(ctx, "reset", "--hard", "HEAD"); err != nil {
		return err
	}
	// Untracked files survive a reset; clean sweeps them too.
	if _, err := g.run(ctx, "clean", "-fd", "-e", ".shuttle"); err != nil {
		return err
	}
	return nil
}

// run executes one git command with the runner's timeout wrapped around
// it.
func (g *GitRunner) run(ctx context.Context, args ...string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	t := timeout.New[[]byte](timeout.Config{DefaultTimeout: commandTimeout})
	return t.Execute(ctx, commandTimeout, func(ctx context.Context) ([]byte, error) {
		// #nosec G204 -- args are fixed git subcommands; the only variable input is the -m message value
		cmd := exec.CommandContext(ctx, "git", args...)
		cmd.Dir = g.dir

		out, err := cmd.CombinedOutput()
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("git %s timed out after %s", args[0], commandTimeout)
			}
			return nil, gitError(args[0], out, err)
		}
		return out, nil
	})
}

// gitError prefers git's own message over the bare exit status.
func gitError(subcommand string, out []byte, err error) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return fmt.Errorf("git %s: %w", subcommand, err)
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return fmt.Errorf("git %s: %s", subcommand, msg)
}
