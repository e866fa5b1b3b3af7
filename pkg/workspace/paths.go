package workspace

import (
	"path/filepath"
	"strings"
)

// Resolve anchors a protocol path under root and rejects anything that
// would escape it. Protocol paths use forward slashes; backslashes are
// normalized before resolution.
func Resolve(root, path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", &ContainmentError{Path: path, Reason: "empty path"}
	}

	p = filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
	if filepath.IsAbs(p) {
		return "", &ContainmentError{Path: path, Reason: "absolute paths not allowed"}
	}

	abs := filepath.Join(root, p)
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", &ContainmentError{Path: path, Reason: "cannot resolve against workspace root"}
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ContainmentError{Path: path, Reason: "path traversal not allowed"}
	}
	if rel == "." {
		return "", &ContainmentError{Path: path, Reason: "path names the workspace root itself"}
	}

	return abs, nil
}

// Rel converts a user-supplied path, absolute or workspace-relative,
// into the canonical workspace-relative form with forward slashes. The
// workspace root itself maps to ".".
func Rel(root, path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", &ContainmentError{Path: path, Reason: "empty path"}
	}

	p = filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", &ContainmentError{Path: path, Reason: "cannot resolve against workspace root"}
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ContainmentError{Path: path, Reason: "path outside workspace root"}
	}

	return filepath.ToSlash(rel), nil
}
