package application

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/felixgeelhaar/shuttle/pkg/workspace"
)

// FileFilter decides which files a directory walk picks up. A nil
// filter accepts everything.
type FileFilter interface {
	// Matches reports whether a file passes the filter.
	Matches(rel string) bool
	// Excluded reports whether a whole subtree can be pruned.
	Excluded(rel string) bool
}

// ContextService expands user-named paths into the workspace-relative
// file list that goes into a task's context set.
type ContextService struct {
	ledger *LedgerService
	root   string
	logger *slog.Logger
}

func NewContextService(ledger *LedgerService, root string, logger *slog.Logger) *ContextService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextService{ledger: ledger, root: root, logger: logger}
}

// CollectFiles turns the given paths, absolute or workspace-relative,
// into sorted workspace-relative file paths. Directories are walked
// recursively. The filter prunes walk results; a file the user named
// directly is never filtered out.
func (s *ContextService) CollectFiles(paths []string, filter FileFilter) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(rel string) {
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		files = append(files, rel)
	}

	for _, p := range paths {
		rel, err := workspace.Rel(s.root, p)
		if err != nil {
			return nil, err
		}

		abs := filepath.Join(s.root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rel, err)
		}

		if !info.IsDir() {
			add(rel)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			sub, relErr := workspace.Rel(s.root, path)
			if relErr != nil {
				return relErr
			}
			if d.IsDir() {
				if path != abs && filter != nil && filter.Excluded(sub) {
					return filepath.SkipDir
				}
				return nil
			}
			if filter == nil || filter.Matches(sub) {
				add(sub)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", rel, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// AddToTask expands paths and unions the result into the task's
// context set. Returns the expanded file list and how many of them
// were new.
func (s *ContextService) AddToTask(taskID string, paths []string, filter FileFilter) ([]string, int, error) {
	files, err := s.CollectFiles(paths, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(files) == 0 {
		return nil, 0, nil
	}

	added, err := s.ledger.AddIncludedFiles(taskID, files...)
	if err != nil {
		return nil, 0, err
	}

	s.logger.Debug("context files added", "task_id", taskID, "expanded", len(files), "new", added)
	return files, added, nil
}
