package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
	"github.com/felixgeelhaar/shuttle/pkg/domain/protocol"
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

var (
	// ErrVCSUnavailable means commit or undo was requested in a workspace
	// that has no usable version control.
	ErrVCSUnavailable = errors.New("version control is not available in this workspace")

	// ErrUndoDeclined means the user did not confirm discarding the
	// working tree.
	ErrUndoDeclined = errors.New("undo declined")
)

// LedgerService owns every task mutation. Apply, commit, and undo are
// serialized per task id so interleaved requests cannot corrupt a
// task's operation history.
type LedgerService struct {
	repo         domain.LedgerRepository
	vcs          domain.VersionControl
	logger       *slog.Logger
	commitPrefix string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithCommitPrefix prepends a fixed prefix to every commit message.
func WithCommitPrefix(prefix string) LedgerOption {
	return func(s *LedgerService) {
		s.commitPrefix = strings.TrimSpace(prefix)
	}
}

// WithLedgerLogger sets the structured logger.
func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(s *LedgerService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewLedgerService(repo domain.LedgerRepository, vcs domain.VersionControl, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		repo:   repo,
		vcs:    vcs,
		logger: slog.Default(),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// taskLock returns the mutex serializing mutations of one task.
func (s *LedgerService) taskLock(taskID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[taskID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[taskID] = l
	}
	return l
}

// StartTask reuses the task with the given name or creates a fresh one,
// and makes it the current task either way. A description is merged
// into a reused task only when it had none. The second return value is
// true when a new task was created.
func (s *LedgerService) StartTask(name, description string) (*task.Task, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, task.ErrEmptyName
	}

	existing, err := s.repo.FindTaskByName(name)
	switch {
	case err == nil:
		if existing.MergeDescription(description) {
			if err := s.repo.SaveTask(existing); err != nil {
				return nil, false, fmt.Errorf("save task: %w", err)
			}
		}
		if err := s.repo.SetCurrentTaskID(existing.ID); err != nil {
			return nil, false, fmt.Errorf("set current task: %w", err)
		}
		s.logger.Info("reusing task", "task_id", existing.ID, "name", name, "status", existing.Status.String())
		return existing, false, nil

	case errors.Is(err, task.ErrNotFound):
		// Fall through and create one.

	default:
		return nil, false, fmt.Errorf("find task by name: %w", err)
	}

	t, err := task.New(name, description)
	if err != nil {
		return nil, false, err
	}
	if err := s.repo.SaveTask(t); err != nil {
		return nil, false, fmt.Errorf("save task: %w", err)
	}
	if err := s.repo.SetCurrentTaskID(t.ID); err != nil {
		return nil, false, fmt.Errorf("set current task: %w", err)
	}

	s.logger.Info("created task", "task_id", t.ID, "name", name)
	return t, true, nil
}

// CurrentTask loads the task the current-task pointer names. A pointer
// to a record that no longer exists is cleared and reported as no
// current task.
func (s *LedgerService) CurrentTask() (*task.Task, error) {
	id, err := s.repo.CurrentTaskID()
	if err != nil {
		return nil, err
	}

	t, err := s.repo.LoadTask(id)
	if errors.Is(err, task.ErrNotFound) {
		_ = s.repo.ClearCurrentTask()
		return nil, task.ErrNoCurrentTask
	}
	return t, err
}

// SwitchTask makes an existing task the current one.
func (s *LedgerService) SwitchTask(id string) (*task.Task, error) {
	t, err := s.repo.LoadTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCurrentTaskID(t.ID); err != nil {
		return nil, fmt.Errorf("set current task: %w", err)
	}

	s.logger.Info("switched task", "task_id", t.ID, "name", t.Name)
	return t, nil
}

// LoadRecentTasks returns persisted tasks ordered most-recent-first.
// A non-positive limit returns all of them.
func (s *LedgerService) LoadRecentTasks(limit int) ([]*task.Task, error) {
	return s.repo.LoadRecentTasks(limit)
}

// AddIncludedFiles unions paths into the task's context set and reports
// how many were new.
func (s *LedgerService) AddIncludedFiles(taskID string, paths ...string) (int, error) {
	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.repo.LoadTask(taskID)
	if err != nil {
		return 0, err
	}

	added := t.AddIncludedFiles(paths...)
	if added == 0 {
		return 0, nil
	}
	if err := s.repo.SaveTask(t); err != nil {
		return 0, fmt.Errorf("save task: %w", err)
	}
	return added, nil
}

// RemoveIncludedFiles drops paths from the task's context set and
// reports how many were present.
func (s *LedgerService) RemoveIncludedFiles(taskID string, paths ...string) (int, error) {
	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.repo.LoadTask(taskID)
	if err != nil {
		return 0, err
	}

	removed := t.RemoveIncludedFiles(paths...)
	if removed == 0 {
		return 0, nil
	}
	if err := s.repo.SaveTask(t); err != nil {
		return 0, fmt.Errorf("save task: %w", err)
	}
	return removed, nil
}

// ClearIncludedFiles empties the task's context set and reports how
// many entries it held.
func (s *LedgerService) ClearIncludedFiles(taskID string) (int, error) {
	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.repo.LoadTask(taskID)
	if err != nil {
		return 0, err
	}

	cleared := t.ClearIncludedFiles()
	if cleared == 0 {
		return 0, nil
	}
	if err := s.repo.SaveTask(t); err != nil {
		return 0, fmt.Errorf("save task: %w", err)
	}
	return cleared, nil
}

// AddOperations appends operations the executor reported as applied,
// recomputes the affected file set, and moves the task to applied.
// Appending to a committed or undone task reopens it.
func (s *LedgerService) AddOperations(taskID string, ops []protocol.Operation) (*task.Task, error) {
	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.repo.LoadTask(taskID)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return t, nil
	}

	fsm, err := task.NewStateMachine(string(t.Status), t.ID, nil)
	if err != nil {
		return nil, err
	}
	if err := fsm.Transition("apply"); err != nil {
		return nil, err
	}

	if err := t.AddOperations(ops...); err != nil {
		return nil, err
	}
	if err := t.SetStatus(fsm.CurrentStatus()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTask(t); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	s.logger.Info("operations recorded",
		"task_id", t.ID,
		"count", len(ops),
		"affected_files", len(t.AffectedFiles),
		"status", t.Status.String())
	return t, nil
}

// CommitTask stages and commits the working tree with the task name as
// the commit message. The task becomes committed only after the VCS
// reports success.
func (s *LedgerService) CommitTask(ctx context.Context, taskID string) (*task.Task, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.repo.LoadTask(taskID)
	if err != nil {
		return nil, err
	}

	fsm, err := task.NewStateMachine(string(t.Status), t.ID, nil)
	if err != nil {
		return nil, err
	}
	if !fsm.CanTransition("commit") {
		return nil, &task.TransitionError{TaskID: t.ID, From: t.Status, Event: "commit"}
	}

	if !s.vcs.IsAvailable(ctx) {
		return nil, ErrVCSUnavailable
	}
	if err := s.vcs.StageAndCommit(ctx, s.commitMessage(t)); err != nil {
		return nil, fmt.Errorf("stage and commit: %w", err)
	}

	if err := fsm.Transition("commit"); err != nil {
		return nil, err
	}
	if err := t.SetStatus(fsm.CurrentStatus()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTask(t); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	s.logger.Info("task committed", "task_id", t.ID, "name", t.Name)
	return t, nil
}

// UndoTask discards every uncommitted change in the working tree after
// explicit confirmation. The reset is deliberately not scoped to the
// task's affected files. A nil confirm declines.
func (s *LedgerService) UndoTask(ctx context.Context, taskID string, confirm domain.ConfirmFunc) (*task.Task, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if confirm == nil {
		confirm = func(string) bool { return false }
	}

	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.repo.LoadTask(taskID)
	if err != nil {
		return nil, err
	}

	fsm, err := task.NewStateMachine(string(t.Status), t.ID, nil)
	if err != nil {
		return nil, err
	}
	if !fsm.CanTransition("undo") {
		return nil, &task.TransitionError{TaskID: t.ID, From: t.Status, Event: "undo"}
	}

	if !s.vcs.IsAvailable(ctx) {
		return nil, ErrVCSUnavailable
	}
	if !confirm(fmt.Sprintf("discard ALL uncommitted changes in the working tree for task %q?", t.Name)) {
		return nil, ErrUndoDeclined
	}
	if err := s.vcs.DiscardAll(ctx); err != nil {
		return nil, fmt.Errorf("discard changes: %w", err)
	}

	if err := fsm.Transition("undo"); err != nil {
		return nil, err
	}
	if err := t.SetStatus(fsm.CurrentStatus()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTask(t); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	s.logger.Info("task undone", "task_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *LedgerService) commitMessage(t *task.Task) string {
	if s.commitPrefix == "" {
		return t.Name
	}
	return s.commitPrefix + " " + t.Name
}
