// Package wiring assembles the infrastructure and application services
// for one workspace root.
package wiring

import (
	"log/slog"
	"path/filepath"

	"github.com/felixgeelhaar/shuttle/internal/infrastructure/config"
	"github.com/felixgeelhaar/shuttle/internal/infrastructure/logging"
	"github.com/felixgeelhaar/shuttle/pkg/storage"
)

// Workspace bundles the shared infrastructure for one workspace root.
type Workspace struct {
	Root   string
	Repo   *storage.FilesystemRepository
	Config *config.Config
	Logger *slog.Logger
}

// NewWorkspace builds the infrastructure around root. A config load
// failure is reported but never fatal: the workspace falls back to
// defaults so read-only commands keep working. The file log is only
// attached once the store exists, so commands run in an unmanaged
// directory leave no .shuttle behind.
func NewWorkspace(root string) (*Workspace, error) {
	repo := storage.NewFilesystemRepository(root)

	cfg, cfgErr := config.Load(root)
	if cfg == nil {
		cfg = config.Default()
	}

	logPath := ""
	if repo.IsInitialized() {
		logPath = filepath.Join(root, storage.ShuttleDir, storage.LogsDir, storage.LogFile)
	}

	return &Workspace{
		Root:   root,
		Repo:   repo,
		Config: cfg,
		Logger: logging.New(logPath),
	}, cfgErr
}
