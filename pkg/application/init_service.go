package application

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
)

// ErrAlreadyInitialized means init was run in a workspace that already
// has a store.
var ErrAlreadyInitialized = errors.New("workspace is already initialized")

// InitService creates the workspace store.
type InitService struct {
	repo   domain.LedgerRepository
	logger *slog.Logger
}

func NewInitService(repo domain.LedgerRepository, logger *slog.Logger) *InitService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InitService{repo: repo, logger: logger}
}

// InitializeWorkspace creates the store directory structure. Running it
// again in an initialized workspace is an error, so init never clobbers
// existing task records.
func (s *InitService) InitializeWorkspace() error {
	if s.repo.IsInitialized() {
		return ErrAlreadyInitialized
	}
	if err := s.repo.Initialize(); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}

	s.logger.Info("workspace initialized")
	return nil
}
