package domain

import (
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

// LedgerRepository handles the persistence of shuttle artifacts in the .shuttle/ directory.
type LedgerRepository interface {
	Initialize() error
	IsInitialized() bool
	SaveTask(t *task.Task) error
	LoadTask(id string) (*task.Task, error)
	FindTaskByName(name string) (*task.Task, error)
	LoadRecentTasks(limit int) ([]*task.Task, error)
	SetCurrentTaskID(id string) error
	CurrentTaskID() (string, error)
	ClearCurrentTask() error
	RecordDiagnostic(d Diagnostic) error
	LoadDiagnostics() ([]Diagnostic, error)
}
