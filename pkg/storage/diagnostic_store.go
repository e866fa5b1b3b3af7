package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
)

// DiagnosticStore holds execution diagnostics in a JSON Lines file.
// Entries are append-only; nothing ever rewrites the file.
type DiagnosticStore struct {
	mu       sync.RWMutex
	path     string
	basePath string
}

// NewDiagnosticStore creates a file-backed diagnostic store. The
// basePath directory is created on first write, not at construction
// time, to avoid interfering with workspace initialization checks.
func NewDiagnosticStore(basePath string) *DiagnosticStore {
	return &DiagnosticStore{
		path:     filepath.Join(basePath, DiagnosticsFile),
		basePath: basePath,
	}
}

// Append adds a new diagnostic to the store.
func (s *DiagnosticStore) Append(d *domain.Diagnostic) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Set ID if not provided
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	// Set timestamp if not provided
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now().UTC()
	}

	// Ensure directory exists on first write
	if err := os.MkdirAll(s.basePath, 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Open file in append mode with restricted permissions
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open diagnostics file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close diagnostics file: %w", cerr)
		}
	}()

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal diagnostic: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write diagnostic: %w", err)
	}

	return nil
}

// LoadAll returns all diagnostics in chronological order.
func (s *DiagnosticStore) LoadAll() ([]domain.Diagnostic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadDiagnostics()
}

// LoadSince returns diagnostics recorded after the given timestamp.
func (s *DiagnosticStore) LoadSince(since time.Time) ([]domain.Diagnostic, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	var result []domain.Diagnostic
	for _, d := range all {
		if d.Timestamp.After(since) {
			result = append(result, d)
		}
	}
	return result, nil
}

// Count returns the total number of diagnostics.
func (s *DiagnosticStore) Count() (int, error) {
	all, err := s.LoadAll()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// loadDiagnostics reads all diagnostics from the file.
func (s *DiagnosticStore) loadDiagnostics() ([]domain.Diagnostic, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open diagnostics file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var result []domain.Diagnostic
	scanner := bufio.NewScanner(f)

	// Increase buffer size for large reasons
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var d domain.Diagnostic
		if err := json.Unmarshal(line, &d); err != nil {
			continue // Skip malformed lines
		}
		result = append(result, d)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan diagnostics: %w", err)
	}

	return result, nil
}
