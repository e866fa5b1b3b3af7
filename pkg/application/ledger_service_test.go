package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/felixgeelhaar/shuttle/pkg/application"
	"github.com/felixgeelhaar/shuttle/pkg/domain/protocol"
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

func newLedger(repo *MockRepo, vcs *MockVCS, opts ...application.LedgerOption) *application.LedgerService {
	if repo == nil {
		repo = NewMockRepo()
	}
	if vcs == nil {
		vcs = &MockVCS{Available: true}
	}
	return application.NewLedgerService(repo, vcs, opts...)
}

func TestLedgerService_StartTask_CreatesAndSetsCurrent(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	tk, created, err := svc.StartTask("add auth", "wire the login flow")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("Expected a freshly created task")
	}
	if tk.Status != task.StatusPending {
		t.Errorf("Status = %s, want pending", tk.Status)
	}
	if repo.CurrentID != tk.ID {
		t.Errorf("CurrentID = %q, want %q", repo.CurrentID, tk.ID)
	}
	if _, ok := repo.Tasks[tk.ID]; !ok {
		t.Error("Expected task to be persisted")
	}
}

func TestLedgerService_StartTask_ReusesByName(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	first, _, err := svc.StartTask("add auth", "")
	if err != nil {
		t.Fatal(err)
	}

	// Same name comes back as the same task, with the description
	// merged in because the original had none.
	second, created, err := svc.StartTask("add auth", "wire the login flow")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("Expected reuse, not creation")
	}
	if second.ID != first.ID {
		t.Errorf("ID = %q, want %q", second.ID, first.ID)
	}
	if second.Description != "wire the login flow" {
		t.Errorf("Description = %q", second.Description)
	}

	// An existing description is never overwritten.
	third, _, err := svc.StartTask("add auth", "something else")
	if err != nil {
		t.Fatal(err)
	}
	if third.Description != "wire the login flow" {
		t.Errorf("Description = %q after second reuse", third.Description)
	}
}

func TestLedgerService_StartTask_EmptyName(t *testing.T) {
	svc := newLedger(nil, nil)

	if _, _, err := svc.StartTask("   ", ""); !errors.Is(err, task.ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
}

func TestLedgerService_CurrentTask(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	if _, err := svc.CurrentTask(); !errors.Is(err, task.ErrNoCurrentTask) {
		t.Errorf("Expected ErrNoCurrentTask, got %v", err)
	}

	tk, _, err := svc.StartTask("add auth", "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.CurrentTask()
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != tk.ID {
		t.Errorf("CurrentTask ID = %q, want %q", got.ID, tk.ID)
	}

	// A pointer to a deleted record is cleared, not surfaced as a
	// missing-task error.
	delete(repo.Tasks, tk.ID)
	if _, err := svc.CurrentTask(); !errors.Is(err, task.ErrNoCurrentTask) {
		t.Errorf("Expected ErrNoCurrentTask for stale pointer, got %v", err)
	}
	if repo.CurrentID != "" {
		t.Error("Expected stale pointer to be cleared")
	}
}

func TestLedgerService_SwitchTask(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	first, _, _ := svc.StartTask("one", "")
	second, _, _ := svc.StartTask("two", "")
	if repo.CurrentID != second.ID {
		t.Fatalf("CurrentID = %q, want %q", repo.CurrentID, second.ID)
	}

	got, err := svc.SwitchTask(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID || repo.CurrentID != first.ID {
		t.Error("Expected switch back to the first task")
	}

	if _, err := svc.SwitchTask("no-such-id"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLedgerService_AddOperations_AppendsAndTransitions(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	tk, _, _ := svc.StartTask("add auth", "")

	create, _ := protocol.NewCreate("src/auth.go", "package auth")
	updated, err := svc.AddOperations(tk.ID, []protocol.Operation{create})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != task.StatusApplied {
		t.Errorf("Status = %s, want applied", updated.Status)
	}
	if len(updated.Operations) != 1 {
		t.Errorf("len(Operations) = %d, want 1", len(updated.Operations))
	}
	if len(updated.AffectedFiles) != 1 || updated.AffectedFiles[0] != "src/auth.go" {
		t.Errorf("AffectedFiles = %v", updated.AffectedFiles)
	}

	// A second batch appends and stays applied.
	edit, _ := protocol.NewSearchReplace("src/auth.go", "package auth", "package auth\n\nfunc Login() {}")
	updated, err = svc.AddOperations(tk.ID, []protocol.Operation{edit})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Operations) != 2 {
		t.Errorf("len(Operations) = %d, want 2", len(updated.Operations))
	}
	if updated.Status != task.StatusApplied {
		t.Errorf("Status = %s, want applied", updated.Status)
	}
}

func TestLedgerService_AddOperations_ReopensCommittedTask(t *testing.T) {
	repo := NewMockRepo()
	vcs := &MockVCS{Available: true}
	svc := newLedger(repo, vcs)

	tk, _, _ := svc.StartTask("add auth", "")
	create, _ := protocol.NewCreate("src/auth.go", "package auth")
	if _, err := svc.AddOperations(tk.ID, []protocol.Operation{create}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CommitTask(context.Background(), tk.ID); err != nil {
		t.Fatal(err)
	}

	del, _ := protocol.NewDelete("src/auth.go")
	updated, err := svc.AddOperations(tk.ID, []protocol.Operation{del})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != task.StatusApplied {
		t.Errorf("Status = %s, want applied after reopen", updated.Status)
	}
}

func TestLedgerService_AddOperations_EmptyBatchIsNoOp(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	tk, _, _ := svc.StartTask("add auth", "")
	updated, err := svc.AddOperations(tk.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != task.StatusPending {
		t.Errorf("Status = %s, want pending after empty batch", updated.Status)
	}
}

func TestLedgerService_CommitTask(t *testing.T) {
	repo := NewMockRepo()
	vcs := &MockVCS{Available: true}
	svc := newLedger(repo, vcs)

	tk, _, _ := svc.StartTask("add auth", "")

	// 1. Pending task cannot be committed.
	if _, err := svc.CommitTask(context.Background(), tk.ID); !errors.Is(err, task.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}

	create, _ := protocol.NewCreate("src/auth.go", "package auth")
	if _, err := svc.AddOperations(tk.ID, []protocol.Operation{create}); err != nil {
		t.Fatal(err)
	}

	// 2. Commit uses the task name as the message.
	updated, err := svc.CommitTask(context.Background(), tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != task.StatusCommitted {
		t.Errorf("Status = %s, want committed", updated.Status)
	}
	if len(vcs.Commits) != 1 || vcs.Commits[0] != "add auth" {
		t.Errorf("Commits = %v", vcs.Commits)
	}
}

func TestLedgerService_CommitTask_PrefixedMessage(t *testing.T) {
	repo := NewMockRepo()
	vcs := &MockVCS{Available: true}
	svc := newLedger(repo, vcs, application.WithCommitPrefix("shuttle:"))

	tk, _, _ := svc.StartTask("add auth", "")
	create, _ := protocol.NewCreate("src/auth.go", "package auth")
	if _, err := svc.AddOperations(tk.ID, []protocol.Operation{create}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CommitTask(context.Background(), tk.ID); err != nil {
		t.Fatal(err)
	}
	if len(vcs.Commits) != 1 || vcs.Commits[0] != "shuttle: add auth" {
		t.Errorf("Commits = %v", vcs.Commits)
	}
}

func TestLedgerService_CommitTask_StatusFlipsOnlyOnSuccess(t *testing.T) {
	repo := NewMockRepo()
	vcs := &MockVCS{Available: true, CommitErr: errors.New("nothing to commit")}
	svc := newLedger(repo, vcs)

	tk, _, _ := svc.StartTask("add auth", "")
	create, _ := protocol.NewCreate("src/auth.go", "package auth")
	if _, err := svc.AddOperations(tk.ID, []protocol.Operation{create}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CommitTask(context.Background(), tk.ID); err == nil {
		t.Fatal("Expected commit failure to propagate")
	}
	if repo.Tasks[tk.ID].Status != task.StatusApplied {
		t.Errorf("Status = %s, want applied after failed commit", repo.Tasks[tk.ID].Status)
	}
}

func TestLedgerService_CommitTask_VCSUnavailable(t *testing.T) {
	repo := NewMockRepo()
	vcs := &MockVCS{Available: false}
	svc := newLedger(repo, vcs)

	tk, _, _ := svc.StartTask("add auth", "")
	create, _ := protocol.NewCreate("src/auth.go", "package auth")
	if _, err := svc.AddOperations(tk.ID, []protocol.Operation{create}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CommitTask(context.Background(), tk.ID); !errors.Is(err, application.ErrVCSUnavailable) {
		t.Errorf("Expected ErrVCSUnavailable, got %v", err)
	}
}

func TestLedgerService_UndoTask(t *testing.T) {
	repo := NewMockRepo()
	vcs := &MockVCS{Available: true}
	svc := newLedger(repo, vcs)

	tk, _, _ := svc.StartTask("add auth", "")
	create, _ := protocol.NewCreate("src/auth.go", "package auth")
	if _, err := svc.AddOperations(tk.ID, []protocol.Operation{create}); err != nil {
		t.Fatal(err)
	}

	// 1. Declined confirmation leaves everything untouched.
	if _, err := svc.UndoTask(context.Background(), tk.ID, func(string) bool { return false }); !errors.Is(err, application.ErrUndoDeclined) {
		t.Errorf("Expected ErrUndoDeclined, got %v", err)
	}
	if vcs.Discards != 0 {
		t.Error("Declined undo must not touch the working tree")
	}
	if repo.Tasks[tk.ID].Status != task.StatusApplied {
		t.Errorf("Status = %s, want applied after declined undo", repo.Tasks[tk.ID].Status)
	}

	// 2. A nil confirm declines as well.
	if _, err := svc.UndoTask(context.Background(), tk.ID, nil); !errors.Is(err, application.ErrUndoDeclined) {
		t.Errorf("Expected ErrUndoDeclined for nil confirm, got %v", err)
	}

	// 3. Confirmed undo discards and flips the status.
	updated, err := svc.UndoTask(context.Background(), tk.ID, func(string) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != task.StatusUndone {
		t.Errorf("Status = %s, want undone", updated.Status)
	}
	if vcs.Discards != 1 {
		t.Errorf("Discards = %d, want 1", vcs.Discards)
	}

	// 4. An undone task cannot be undone again.
	if _, err := svc.UndoTask(context.Background(), tk.ID, func(string) bool { return true }); !errors.Is(err, task.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestLedgerService_IncludedFiles(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	tk, _, _ := svc.StartTask("add auth", "")

	added, err := svc.AddIncludedFiles(tk.ID, "src/main.go", "src/main.go", "docs/auth.md")
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	removed, err := svc.RemoveIncludedFiles(tk.ID, "docs/auth.md", "missing.go")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	cleared, err := svc.ClearIncludedFiles(tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cleared != 1 {
		t.Errorf("cleared = %d, want 1", cleared)
	}
	if len(repo.Tasks[tk.ID].IncludedFiles) != 0 {
		t.Errorf("IncludedFiles = %v, want empty", repo.Tasks[tk.ID].IncludedFiles)
	}
}

func TestLedgerService_AddOperations_SerializedPerTask(t *testing.T) {
	repo := NewMockRepo()
	svc := newLedger(repo, nil)

	tk, _, _ := svc.StartTask("add auth", "")

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			op, _ := protocol.NewCreate("src/auth.go", "package auth")
			if _, err := svc.AddOperations(tk.ID, []protocol.Operation{op}); err != nil {
				t.Errorf("AddOperations failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(repo.Tasks[tk.ID].Operations); got != writers {
		t.Errorf("len(Operations) = %d, want %d", got, writers)
	}
}
