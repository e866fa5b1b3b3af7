package domain

import (
	"time"

	"github.com/google/uuid"
)

// Diagnostic is a single append-only log entry explaining why an
// operation could not be applied.
type Diagnostic struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`           // operation kind, or "batch" for batch-level failures
	Path      string    `json:"path,omitempty"` // primary path involved, if any
	Reason    string    `json:"reason"`
	TaskID    string    `json:"task_id,omitempty"`
}

// NewDiagnostic stamps a diagnostic with a fresh ID and the current time.
func NewDiagnostic(kind, path, reason string) Diagnostic {
	return Diagnostic{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Path:      path,
		Reason:    reason,
	}
}

// DiagnosticSink records diagnostics for post-mortem inspection.
// Implementations append; nothing ever rewrites an entry.
type DiagnosticSink interface {
	RecordDiagnostic(d Diagnostic) error
}
