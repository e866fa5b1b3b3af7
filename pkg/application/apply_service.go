package application

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
	"github.com/felixgeelhaar/shuttle/pkg/domain/protocol"
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
	"github.com/felixgeelhaar/shuttle/pkg/workspace"
)

// ErrNoOperations means the reply text contained no decodable
// operation blocks. Individual malformed blocks are dropped silently;
// a completely empty result is the only parse-level signal.
var ErrNoOperations = errors.New("no operations found in reply")

// ApplyReport is the outcome of applying one pasted reply.
type ApplyReport struct {
	Result workspace.Result
	Task   *task.Task
}

// ApplyService runs the paste-back half of the loop: parse the reply,
// apply every operation, record the applied subset on the current
// task, and surface one aggregate summary.
type ApplyService struct {
	ledger   *LedgerService
	executor *workspace.Executor
	notifier domain.Notifier
	logger   *slog.Logger
}

func NewApplyService(ledger *LedgerService, executor *workspace.Executor, notifier domain.Notifier, logger *slog.Logger) *ApplyService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplyService{
		ledger:   ledger,
		executor: executor,
		notifier: notifier,
		logger:   logger,
	}
}

// ApplyReply parses reply text and applies the decoded operations in
// order. It requires a current task before touching any file, so the
// ledger never loses track of an applied batch.
func (s *ApplyService) ApplyReply(text string) (*ApplyReport, error) {
	ops := protocol.Parse(text)
	if len(ops) == 0 {
		return nil, ErrNoOperations
	}

	current, err := s.ledger.CurrentTask()
	if err != nil {
		return nil, err
	}

	res, err := s.executor.ExecuteAll(ops)
	if err != nil {
		return nil, err
	}

	t := current
	if len(res.Applied) > 0 {
		t, err = s.ledger.AddOperations(current.ID, res.Applied)
		if err != nil {
			// The workspace is already mutated. Report the ledger failure
			// without discarding what actually happened on disk.
			return &ApplyReport{Result: res, Task: current}, fmt.Errorf("record applied operations: %w", err)
		}
	}

	s.notify(res)
	s.logger.Info("reply applied",
		"task_id", t.ID,
		"parsed", len(ops),
		"applied", res.Success,
		"failed", res.Errors)
	return &ApplyReport{Result: res, Task: t}, nil
}

func (s *ApplyService) notify(res workspace.Result) {
	summary := fmt.Sprintf("%d applied, %d failed", res.Success, res.Errors)
	if res.Errors > 0 {
		s.notifier.Warn(summary + "; see 'shuttle log' for details")
		return
	}
	s.notifier.Info(summary)
}

type noopNotifier struct{}

func (noopNotifier) Info(string) {}
func (noopNotifier) Warn(string) {}
