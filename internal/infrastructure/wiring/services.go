package wiring

import (
	"github.com/felixgeelhaar/shuttle/internal/infrastructure/vcs"
	"github.com/felixgeelhaar/shuttle/internal/infrastructure/watch"
	"github.com/felixgeelhaar/shuttle/pkg/application"
	"github.com/felixgeelhaar/shuttle/pkg/domain"
	"github.com/felixgeelhaar/shuttle/pkg/workspace"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	VCS       domain.VersionControl
	Init      *application.InitService
	Ledger    *application.LedgerService
	Context   *application.ContextService
	Prompt    *application.PromptService
}

// BuildAppServices constructs the service graph for a workspace root.
// The returned error carries config-load problems; the services are
// usable either way.
func BuildAppServices(root string) (*AppServices, error) {
	ws, loadErr := NewWorkspace(root)

	git := vcs.NewGitRunner(root)
	ledger := application.NewLedgerService(ws.Repo, git,
		application.WithLedgerLogger(ws.Logger),
		application.WithCommitPrefix(ws.Config.Git.CommitPrefix))

	return &AppServices{
		Workspace: ws,
		VCS:       git,
		Init:      application.NewInitService(ws.Repo, ws.Logger),
		Ledger:    ledger,
		Context:   application.NewContextService(ledger, root, ws.Logger),
		Prompt:    application.NewPromptService(ledger, root, ws.Logger),
	}, loadErr
}

// NewExecutor builds the operation executor for one apply run, with the
// confirmer the command supplies. Failures land in the workspace's
// diagnostic store.
func (s *AppServices) NewExecutor(confirm domain.ConfirmFunc) (*workspace.Executor, error) {
	return workspace.NewExecutor(s.Workspace.Root,
		workspace.WithConfirm(confirm),
		workspace.WithDiagnosticSink(s.Workspace.Repo),
		workspace.WithLogger(s.Workspace.Logger))
}

// NewApply wires the parse-execute-record pipeline for one run.
func (s *AppServices) NewApply(confirm domain.ConfirmFunc, notifier domain.Notifier) (*application.ApplyService, error) {
	exec, err := s.NewExecutor(confirm)
	if err != nil {
		return nil, err
	}
	return application.NewApplyService(s.Ledger, exec, notifier, s.Workspace.Logger), nil
}

// ContextFilter merges the workspace's configured excludes with
// command-line patterns into one walk filter.
func (s *AppServices) ContextFilter(include, exclude []string) *watch.PatternFilter {
	merged := append([]string{}, s.Workspace.Config.Context.Excludes...)
	merged = append(merged, exclude...)
	return watch.NewPatternFilter(include, merged)
}
