package application_test

import (
	"context"
	"sort"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

type MockRepo struct {
	Tasks       map[string]*task.Task
	CurrentID   string
	Diagnostics []domain.Diagnostic
	Initialized bool
	SaveError   error
	LoadError   error
	SaveCount   int
}

func NewMockRepo() *MockRepo {
	return &MockRepo{Tasks: make(map[string]*task.Task)}
}

func (m *MockRepo) Initialize() error   { m.Initialized = true; return nil }
func (m *MockRepo) IsInitialized() bool { return m.Initialized }

func (m *MockRepo) SaveTask(t *task.Task) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.SaveCount++
	m.Tasks[t.ID] = t
	return nil
}

func (m *MockRepo) LoadTask(id string) (*task.Task, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	t, ok := m.Tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	return t, nil
}

func (m *MockRepo) FindTaskByName(name string) (*task.Task, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	var found *task.Task
	for _, t := range m.Tasks {
		if t.Name != name {
			continue
		}
		if found == nil || t.UpdatedAt.After(found.UpdatedAt) {
			found = t
		}
	}
	if found == nil {
		return nil, task.ErrNotFound
	}
	return found, nil
}

func (m *MockRepo) LoadRecentTasks(limit int) ([]*task.Task, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	all := make([]*task.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockRepo) SetCurrentTaskID(id string) error { m.CurrentID = id; return nil }

func (m *MockRepo) CurrentTaskID() (string, error) {
	if m.CurrentID == "" {
		return "", task.ErrNoCurrentTask
	}
	return m.CurrentID, nil
}

func (m *MockRepo) ClearCurrentTask() error { m.CurrentID = ""; return nil }

func (m *MockRepo) RecordDiagnostic(d domain.Diagnostic) error {
	m.Diagnostics = append(m.Diagnostics, d)
	return nil
}

func (m *MockRepo) LoadDiagnostics() ([]domain.Diagnostic, error) {
	return m.Diagnostics, nil
}

type MockVCS struct {
	Available  bool
	CommitErr  error
	DiscardErr error
	Commits    []string
	Discards   int
}

func (m *MockVCS) IsAvailable(ctx context.Context) bool { return m.Available }

func (m *MockVCS) StageAndCommit(ctx context.Context, message string) error {
	if m.CommitErr != nil {
		return m.CommitErr
	}
	m.Commits = append(m.Commits, message)
	return nil
}

func (m *MockVCS) DiscardAll(ctx context.Context) error {
	if m.DiscardErr != nil {
		return m.DiscardErr
	}
	m.Discards++
	return nil
}

type MockNotifier struct {
	Infos []string
	Warns []string
}

func (m *MockNotifier) Info(message string) { m.Infos = append(m.Infos, message) }
func (m *MockNotifier) Warn(message string) { m.Warns = append(m.Warns, message) }
