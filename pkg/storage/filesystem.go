package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

const ShuttleDir = ".shuttle"
const TasksDir = "tasks"
const CurrentFile = "current"
const DiagnosticsFile = "diagnostics.jsonl"
const ConfigFile = "config.yaml"
const LogsDir = "logs"
const LogFile = "shuttle.log"

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
	diagnostics *DiagnosticStore
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		diagnostics: NewDiagnosticStore(filepath.Join(root, ShuttleDir)),
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is a direct child of the .shuttle directory
// and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, ShuttleDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, ShuttleDir, TasksDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .shuttle directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, ShuttleDir))
	return err == nil
}

// SetCurrentTaskID points the workspace at the active task.
func (r *FilesystemRepository) SetCurrentTaskID(id string) error {
	if err := validateTaskID(id); err != nil {
		return err
	}

	path, err := r.ResolvePath(CurrentFile)
	if err != nil {
		return err
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, []byte(id+"\n"), 0600)
}

// CurrentTaskID returns the active task id, or ErrNoCurrentTask when no
// task has been started since init.
func (r *FilesystemRepository) CurrentTaskID() (string, error) {
	path, err := r.ResolvePath(CurrentFile)
	if err != nil {
		return "", err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", task.ErrNoCurrentTask
		}
		return "", fmt.Errorf("failed to read current task file: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", task.ErrNoCurrentTask
	}
	return id, nil
}

// ClearCurrentTask forgets the active task pointer.
func (r *FilesystemRepository) ClearCurrentTask() error {
	path, err := r.ResolvePath(CurrentFile)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear current task: %w", err)
	}
	return nil
}
