package watch

import (
	"path"
	"strings"
)

// PatternFilter decides which files a context walk picks up. Patterns
// use filepath.Match syntax against slash-separated workspace-relative
// paths. Excludes win over includes, and exclude patterns are also
// tested against every path segment, so a bare directory name like
// ".git" prunes its whole subtree.
type PatternFilter struct {
	include []string
	exclude []string
}

func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{include: include, exclude: exclude}
}

// Matches reports whether the path passes the filter. With no include
// patterns everything not excluded passes; otherwise at least one
// include must match the path or its base name.
func (f *PatternFilter) Matches(rel string) bool {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if f.Excluded(rel) {
		return false
	}

	if len(f.include) == 0 {
		return true
	}

	base := path.Base(rel)
	for _, pattern := range f.include {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Excluded reports whether an exclude pattern rules the path out.
// Include patterns play no part here: they describe files, and a
// directory that matches no include may still hold files that do.
func (f *PatternFilter) Excluded(rel string) bool {
	rel = strings.ReplaceAll(rel, `\`, "/")
	segments := strings.Split(rel, "/")
	for _, pattern := range f.exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		for _, segment := range segments {
			if ok, _ := path.Match(pattern, segment); ok {
				return true
			}
		}
	}
	return false
}
