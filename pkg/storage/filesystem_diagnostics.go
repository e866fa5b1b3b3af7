package storage

import (
	"github.com/felixgeelhaar/shuttle/pkg/domain"
)

// RecordDiagnostic appends one execution diagnostic to .shuttle/diagnostics.jsonl.
func (r *FilesystemRepository) RecordDiagnostic(d domain.Diagnostic) error {
	return r.diagnostics.Append(&d)
}

// LoadDiagnostics returns every recorded diagnostic in chronological order.
func (r *FilesystemRepository) LoadDiagnostics() ([]domain.Diagnostic, error) {
	return r.diagnostics.LoadAll()
}
