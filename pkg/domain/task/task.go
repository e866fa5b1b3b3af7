// Package task models the ledger's unit of work: a named collaboration
// session that records which files were shared with the assistant, which
// operations came back and were applied, and where the session stands in
// its lifecycle.
package task

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/shuttle/pkg/domain/protocol"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApplied   Status = "applied"
	StatusCommitted Status = "committed"
	StatusUndone    Status = "undone"
)

// Task is the durable record of one collaboration session. Tasks are
// keyed by a stable ID so renames and description edits never orphan
// the record.
type Task struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	Status        Status               `json:"status"`
	IncludedFiles []string             `json:"included_files,omitempty"`
	Operations    []protocol.Operation `json:"operations,omitempty"`
	AffectedFiles []string             `json:"affected_files,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

// New creates a pending task with a fresh ID.
func New(name, description string) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now().UTC()
	return &Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MergeDescription fills in the description when none was recorded yet.
// An existing description is never overwritten. Returns true when the
// task changed.
func (t *Task) MergeDescription(description string) bool {
	description = strings.TrimSpace(description)
	if description == "" || t.Description != "" {
		return false
	}
	t.Description = description
	t.touch()
	return true
}

// AddIncludedFiles records paths that were shared with the assistant.
// Duplicates are skipped and first-seen order is preserved. Returns the
// number of paths actually added.
func (t *Task) AddIncludedFiles(paths ...string) int {
	seen := make(map[string]struct{}, len(t.IncludedFiles))
	for _, p := range t.IncludedFiles {
		seen[p] = struct{}{}
	}

	added := 0
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		t.IncludedFiles = append(t.IncludedFiles, p)
		added++
	}

	if added > 0 {
		t.touch()
	}
	return added
}

// RemoveIncludedFiles drops paths from the context set. Returns the
// number of paths actually removed.
func (t *Task) RemoveIncludedFiles(paths ...string) int {
	drop := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			drop[p] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := t.IncludedFiles[:0]
	removed := 0
	for _, p := range t.IncludedFiles {
		if _, ok := drop[p]; ok {
			removed++
			continue
		}
		kept = append(kept, p)
	}

	if removed > 0 {
		t.IncludedFiles = kept
		t.touch()
	}
	return removed
}

// ClearIncludedFiles empties the context set. Returns the number of
// entries it held.
func (t *Task) ClearIncludedFiles() int {
	cleared := len(t.IncludedFiles)
	if cleared == 0 {
		return 0
	}
	t.IncludedFiles = nil
	t.touch()
	return cleared
}

// AddOperations appends applied operations to the task's history and
// recomputes the affected file set. Operations are validated before any
// of them are appended.
func (t *Task) AddOperations(ops ...protocol.Operation) error {
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("invalid operation: %w", err)
		}
	}

	t.Operations = append(t.Operations, ops...)
	t.recomputeAffectedFiles()
	t.touch()
	return nil
}

// SetStatus moves the task to the target status, enforcing the
// lifecycle rules.
func (t *Task) SetStatus(target Status) error {
	if !target.IsValid() {
		return fmt.Errorf("invalid status: %s", target)
	}
	if !t.Status.CanTransitionTo(target) {
		return &TransitionError{TaskID: t.ID, From: t.Status, To: target}
	}
	t.Status = target
	t.touch()
	return nil
}

// HasOperations returns true once at least one operation was applied
// under this task.
func (t *Task) HasOperations() bool {
	return len(t.Operations) > 0
}

func (t *Task) recomputeAffectedFiles() {
	set := make(map[string]struct{})
	for _, op := range t.Operations {
		for _, p := range op.AffectedPaths() {
			set[p] = struct{}{}
		}
	}

	files := make([]string, 0, len(set))
	for p := range set {
		files = append(files, p)
	}
	sort.Strings(files)
	t.AffectedFiles = files
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
}
