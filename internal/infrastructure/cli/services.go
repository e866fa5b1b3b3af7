package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/shuttle/internal/infrastructure/wiring"
)

// ErrNotInitialized means a command that needs the store ran before
// 'shuttle init'.
var ErrNotInitialized = errors.New("workspace has no .shuttle store")

func workspaceRoot() (string, error) {
	if workspaceFlag != "" {
		abs, err := filepath.Abs(workspaceFlag)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", workspaceFlag, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServices(root string) (*wiring.AppServices, error) {
	services, loadErr := wiring.BuildAppServices(root)
	if services == nil {
		return nil, fmt.Errorf("failed to build services: %w", loadErr)
	}
	if loadErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", loadErr)
	}
	return services, nil
}

// loadServicesForCurrentDir wires services for the resolved workspace
// root and requires an initialized store.
func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, err
	}
	services, err := loadServices(root)
	if err != nil {
		return nil, err
	}
	if !services.Workspace.Repo.IsInitialized() {
		return nil, ErrNotInitialized
	}
	return services, nil
}
