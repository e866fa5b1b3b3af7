package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

// taskIDPattern matches generated task identifiers: alphanumeric with
// hyphens/underscores. Keeps arbitrary strings out of file names.
var taskIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// taskRecordSchemaJSON guards against loading corrupted or hand-edited
// task records. Field semantics are validated by the domain layer; this
// checks shape only.
const taskRecordSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "status", "created_at", "updated_at"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "name": { "type": "string", "minLength": 1 },
    "description": { "type": "string" },
    "status": { "type": "string" },
    "included_files": { "type": "array", "items": { "type": "string" } },
    "affected_files": { "type": "array", "items": { "type": "string" } },
    "operations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind"],
        "properties": {
          "kind": { "type": "string" }
        }
      }
    },
    "version": { "type": "integer", "minimum": 0 }
  }
}`

var taskRecordSchemaLoader = gojsonschema.NewStringLoader(taskRecordSchemaJSON)

func validateTaskID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if !taskIDPattern.MatchString(id) {
		return fmt.Errorf("invalid task ID format: %s", id)
	}
	return nil
}

// taskPath maps a task id to its record file under .shuttle/tasks/.
func (r *FilesystemRepository) taskPath(id string) (string, error) {
	if err := validateTaskID(id); err != nil {
		return "", err
	}
	return filepath.Join(r.root, ShuttleDir, TasksDir, id+".json"), nil
}

// SaveTask persists one durable record per task, keyed by its stable id.
// Optimistic locking: the on-disk version must match the version the
// caller loaded, otherwise a ConflictError is returned.
func (r *FilesystemRepository) SaveTask(t *task.Task) error {
	path, err := r.taskPath(t.ID)
	if err != nil {
		return err
	}

	// #nosec G304 -- Path is resolved and validated via taskPath
	existing, err := os.ReadFile(path)
	if err == nil {
		var disk task.Task
		if jsonErr := json.Unmarshal(existing, &disk); jsonErr == nil {
			if disk.Version != t.Version {
				return &task.ConflictError{TaskID: t.ID, Expected: t.Version, Actual: disk.Version}
			}
		}
	}
	// If the file doesn't exist, no conflict possible.

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create tasks directory: %w", err)
	}

	t.Version++

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadTask reads one task record by id.
func (r *FilesystemRepository) LoadTask(id string) (*task.Task, error) {
	retryer := retry.New[*task.Task](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*task.Task, error) {
		path, err := r.taskPath(id)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via taskPath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, task.ErrNotFound
			}
			return nil, fmt.Errorf("failed to read task file: %w", err)
		}

		return decodeTaskRecord(data)
	})
}

// FindTaskByName returns the task with the exact name. When several
// tasks share a name the most recently updated one wins.
func (r *FilesystemRepository) FindTaskByName(name string) (*task.Task, error) {
	all, err := r.loadAllTasks()
	if err != nil {
		return nil, err
	}

	var found *task.Task
	for _, t := range all {
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

// LoadRecentTasks returns persisted tasks ordered most-recent-first.
// A non-positive limit returns every task.
func (r *FilesystemRepository) LoadRecentTasks(limit int) ([]*task.Task, error) {
	all, err := r.loadAllTasks()
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *FilesystemRepository) loadAllTasks() ([]*task.Task, error) {
	dir := filepath.Join(r.root, ShuttleDir, TasksDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tasks directory: %w", err)
	}

	var tasks []*task.Task
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// #nosec G304 -- Entries come from listing the managed tasks directory
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read task file %s: %w", entry.Name(), err)
		}

		t, err := decodeTaskRecord(data)
		if err != nil {
			return nil, fmt.Errorf("task record %s: %w", entry.Name(), err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// decodeTaskRecord validates the raw record against the schema before
// unmarshaling it.
func decodeTaskRecord(data []byte) (*task.Task, error) {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(taskRecordSchemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate task record: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("task record is invalid: %s", strings.Join(issues, "; "))
	}

	var t task.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &t, nil
}
