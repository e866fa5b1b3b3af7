// Package protocol defines the line-oriented markup a model reply uses to
// describe file mutations, and the parser that decodes it.
package protocol

import "fmt"

// Kind identifies the mutation variant carried by an Operation.
type Kind string

const (
	KindCreate        Kind = "create"
	KindDelete        Kind = "delete"
	KindRename        Kind = "rename"
	KindSearchReplace Kind = "search_replace"
	KindOverwrite     Kind = "overwrite"
)

// IsValid returns true if the kind is one of the five known variants.
func (k Kind) IsValid() bool {
	switch k {
	case KindCreate, KindDelete, KindRename, KindSearchReplace, KindOverwrite:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Operation is one atomic file-mutation instruction decoded from a reply.
// Exactly one kind is set per instance; the constructors reject instances
// with missing required fields, so a parsed Operation is always complete.
type Operation struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Content string `json:"content,omitempty"`
	Search  string `json:"search,omitempty"`
	Replace string `json:"replace,omitempty"`
}

// NewCreate returns a Create operation. Content may be empty (an empty file).
func NewCreate(path, content string) (Operation, error) {
	if path == "" {
		return Operation{}, fmt.Errorf("create: path cannot be empty")
	}
	return Operation{Kind: KindCreate, Path: path, Content: content}, nil
}

// NewDelete returns a Delete operation.
func NewDelete(path string) (Operation, error) {
	if path == "" {
		return Operation{}, fmt.Errorf("delete: path cannot be empty")
	}
	return Operation{Kind: KindDelete, Path: path}, nil
}

// NewRename returns a Rename operation.
func NewRename(from, to string) (Operation, error) {
	if from == "" || to == "" {
		return Operation{}, fmt.Errorf("rename: both source and destination paths are required")
	}
	return Operation{Kind: KindRename, From: from, To: to}, nil
}

// NewSearchReplace returns a SearchReplace operation. The search text must be
// non-empty; an empty replacement deletes every occurrence.
func NewSearchReplace(path, search, replace string) (Operation, error) {
	if path == "" {
		return Operation{}, fmt.Errorf("search-replace: path cannot be empty")
	}
	if search == "" {
		return Operation{}, fmt.Errorf("search-replace: search text cannot be empty")
	}
	return Operation{Kind: KindSearchReplace, Path: path, Search: search, Replace: replace}, nil
}

// NewOverwrite returns an Overwrite operation replacing an existing file's
// entire content.
func NewOverwrite(path, content string) (Operation, error) {
	if path == "" {
		return Operation{}, fmt.Errorf("overwrite: path cannot be empty")
	}
	return Operation{Kind: KindOverwrite, Path: path, Content: content}, nil
}

// Validate checks that the operation carries a known kind and every field
// that kind requires. Records loaded from disk pass through here before use.
func (op Operation) Validate() error {
	switch op.Kind {
	case KindCreate, KindOverwrite:
		if op.Path == "" {
			return fmt.Errorf("%s: path cannot be empty", op.Kind)
		}
	case KindDelete:
		if op.Path == "" {
			return fmt.Errorf("delete: path cannot be empty")
		}
	case KindRename:
		if op.From == "" || op.To == "" {
			return fmt.Errorf("rename: both source and destination paths are required")
		}
	case KindSearchReplace:
		if op.Path == "" {
			return fmt.Errorf("search-replace: path cannot be empty")
		}
		if op.Search == "" {
			return fmt.Errorf("search-replace: search text cannot be empty")
		}
	default:
		return fmt.Errorf("unknown operation kind: %q", op.Kind)
	}
	return nil
}

// AffectedPaths returns every workspace-relative path the operation touches.
// Rename reports both its source and destination.
func (op Operation) AffectedPaths() []string {
	if op.Kind == KindRename {
		return []string{op.From, op.To}
	}
	return []string{op.Path}
}

// Summary returns a short human-readable description for logs and notices.
func (op Operation) Summary() string {
	if op.Kind == KindRename {
		return fmt.Sprintf("rename %s -> %s", op.From, op.To)
	}
	return fmt.Sprintf("%s %s", op.Kind, op.Path)
}
