// Package workspace applies parsed operations to a real directory tree.
// Every path is resolved under a single workspace root; nothing outside
// the root is ever read or written.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
	"github.com/felixgeelhaar/shuttle/pkg/domain/protocol"
)

// Result aggregates one batch run. Applied holds the operations that
// actually took effect, in execution order, ready for ledger append.
type Result struct {
	Success int
	Errors  int
	Applied []protocol.Operation
}

// Executor applies operations one at a time against a workspace root.
// Each operation carries its own failure boundary: one failure neither
// aborts nor rolls back the rest of the batch.
type Executor struct {
	root    string
	confirm domain.ConfirmFunc
	sink    domain.DiagnosticSink
	logger  *slog.Logger
}

// Option configures the executor.
type Option func(*Executor)

// WithConfirm sets the callback consulted before overwriting an existing
// file. Without one every overwrite is declined.
func WithConfirm(confirm domain.ConfirmFunc) Option {
	return func(e *Executor) {
		if confirm != nil {
			e.confirm = confirm
		}
	}
}

// WithDiagnosticSink sets the sink that receives one entry per failed
// operation.
func WithDiagnosticSink(sink domain.DiagnosticSink) Option {
	return func(e *Executor) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor validates the workspace root and builds an executor for it.
func NewExecutor(root string, opts ...Option) (*Executor, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	e := &Executor{
		root:    root,
		confirm: func(string) bool { return false },
		sink:    noopSink{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root returns the workspace root directory.
func (e *Executor) Root() string {
	return e.root
}

// ExecuteAll applies operations strictly in the order given. The batch
// always runs to completion; failures are recorded in the diagnostic
// sink and counted, never raised. The returned error is non-nil only
// when the workspace root is unusable, in which case nothing ran.
func (e *Executor) ExecuteAll(ops []protocol.Operation) (Result, error) {
	if err := checkRoot(e.root); err != nil {
		e.record(domain.NewDiagnostic("batch", e.root, err.Error()))
		return Result{}, err
	}

	var res Result
	for _, op := range ops {
		if err := e.apply(op); err != nil {
			res.Errors++
			e.record(domain.NewDiagnostic(string(op.Kind), diagPath(op), err.Error()))
			e.logger.Warn("operation failed",
				"kind", op.Kind,
				"path", diagPath(op),
				"error", err)
			continue
		}
		res.Success++
		res.Applied = append(res.Applied, op)
		e.logger.Debug("operation applied", "kind", op.Kind, "path", diagPath(op))
	}
	return res, nil
}

func (e *Executor) apply(op protocol.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	switch op.Kind {
	case protocol.KindCreate:
		return e.applyCreate(op)
	case protocol.KindDelete:
		return e.applyDelete(op)
	case protocol.KindRename:
		return e.applyRename(op)
	case protocol.KindSearchReplace:
		return e.applySearchReplace(op)
	case protocol.KindOverwrite:
		return e.applyOverwrite(op)
	default:
		return fmt.Errorf("unknown operation kind: %s", op.Kind)
	}
}

func (e *Executor) applyCreate(op protocol.Operation) error {
	target, err := Resolve(e.root, op.Path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(target); err == nil {
		if !e.confirm("overwrite existing file " + op.Path + "?") {
			return &DeclinedOverwriteError{Path: op.Path}
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(op.Content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", op.Path, err)
	}
	return nil
}

func (e *Executor) applyDelete(op protocol.Operation) error {
	target, err := Resolve(e.root, op.Path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return &PreconditionError{Op: "delete", Path: op.Path, Reason: "target does not exist"}
		}
		return fmt.Errorf("stat %s: %w", op.Path, err)
	}

	if err := os.Remove(target); err != nil {
		return fmt.Errorf("remove %s: %w", op.Path, err)
	}
	return nil
}

func (e *Executor) applyRename(op protocol.Operation) error {
	src, err := Resolve(e.root, op.From)
	if err != nil {
		return err
	}
	dst, err := Resolve(e.root, op.To)
	if err != nil {
		return err
	}

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return &PreconditionError{Op: "rename", Path: op.From, Reason: "source does not exist"}
		}
		return fmt.Errorf("stat %s: %w", op.From, err)
	}
	if _, err := os.Stat(dst); err == nil {
		return &PreconditionError{Op: "rename", Path: op.To, Reason: "destination already exists"}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s to %s: %w", op.From, op.To, err)
	}
	return nil
}

func (e *Executor) applySearchReplace(op protocol.Operation) error {
	target, err := Resolve(e.root, op.Path)
	if err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return &PreconditionError{Op: "search/replace", Path: op.Path, Reason: "target does not exist"}
		}
		return fmt.Errorf("stat %s: %w", op.Path, err)
	}

	// #nosec G304 -- Path is resolved and validated via Resolve
	data, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("read %s: %w", op.Path, err)
	}

	content := string(data)
	if !strings.Contains(content, op.Search) {
		return &PreconditionError{Op: "search/replace", Path: op.Path, Reason: "search text not found"}
	}

	updated := strings.ReplaceAll(content, op.Search, op.Replace)
	if err := os.WriteFile(target, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", op.Path, err)
	}
	return nil
}

func (e *Executor) applyOverwrite(op protocol.Operation) error {
	target, err := Resolve(e.root, op.Path)
	if err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return &PreconditionError{Op: "overwrite", Path: op.Path, Reason: "target does not exist"}
		}
		return fmt.Errorf("stat %s: %w", op.Path, err)
	}

	if err := os.WriteFile(target, []byte(op.Content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", op.Path, err)
	}
	return nil
}

func (e *Executor) record(d domain.Diagnostic) {
	if err := e.sink.RecordDiagnostic(d); err != nil {
		e.logger.Error("failed to record diagnostic", "error", err)
	}
}

func checkRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return &WorkspaceUnavailableError{Root: root, Reason: "no workspace root configured"}
	}
	info, err := os.Stat(root)
	if err != nil {
		return &WorkspaceUnavailableError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return &WorkspaceUnavailableError{Root: root, Reason: "not a directory"}
	}
	return nil
}

func diagPath(op protocol.Operation) string {
	if op.Kind == protocol.KindRename {
		return op.From + " -> " + op.To
	}
	return op.Path
}

type noopSink struct{}

func (noopSink) RecordDiagnostic(domain.Diagnostic) error { return nil }
