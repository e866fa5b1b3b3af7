package application

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/felixgeelhaar/shuttle/pkg/workspace"
)

// promptInstructions teaches the model the operation blocks shuttle can
// decode from its reply. Anything outside these blocks is ignored.
const promptInstructions = `You are collaborating on a codebase through a strict file-operation
protocol. Explain your reasoning however you like, but express every
file change exclusively through these blocks:

<<<CREATE: path/to/file>>>
<full file content>
<<<END>>>

<<<DELETE: path/to/file>>>
<<<END>>>

<<<RENAME: old/path -> new/path>>>
<<<END>>>

<<<FILE: path/to/file>>>
<<<SEARCH>>>
<exact text currently in the file>
<<<REPLACE>>>
<text it becomes>
<<<END>>>

Rules:
- Paths are relative to the project root, forward slashes only.
- SEARCH text must match the file content exactly, including whitespace.
- Every occurrence of the SEARCH text gets replaced.
- A FILE block without a SEARCH section replaces the whole file.
- Replacing large portions of a file? Prefer one FILE block without
  SEARCH over many fragile SEARCH/REPLACE pairs.
`

// PromptService assembles the outbound prompt: protocol instructions,
// the current task's context files, then the task itself as the ask.
type PromptService struct {
	ledger *LedgerService
	root   string
	logger *slog.Logger
}

func NewPromptService(ledger *LedgerService, root string, logger *slog.Logger) *PromptService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptService{ledger: ledger, root: root, logger: logger}
}

// BuildPrompt renders the prompt for the current task. Context files
// that vanished since they were added are skipped, not fatal.
func (s *PromptService) BuildPrompt() (string, error) {
	t, err := s.ledger.CurrentTask()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(promptInstructions)

	if len(t.IncludedFiles) > 0 {
		b.WriteString("\n## Context files\n")
		for _, rel := range t.IncludedFiles {
			abs, err := workspace.Resolve(s.root, rel)
			if err != nil {
				s.logger.Warn("skipping context file", "path", rel, "error", err)
				continue
			}
			// #nosec G304 -- Path is resolved and validated via Resolve
			data, err := os.ReadFile(abs)
			if err != nil {
				s.logger.Warn("skipping unreadable context file", "path", rel, "error", err)
				continue
			}

			fmt.Fprintf(&b, "\n### %s\n```\n", rel)
			b.Write(data)
			if len(data) > 0 && data[len(data)-1] != '\n' {
				b.WriteByte('\n')
			}
			b.WriteString("```\n")
		}
	}

	b.WriteString("\n## Task\n\n")
	b.WriteString(t.Name)
	if t.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Description)
	}
	b.WriteString("\n")

	s.logger.Debug("prompt built", "task_id", t.ID, "files", len(t.IncludedFiles), "bytes", b.Len())
	return b.String(), nil
}
