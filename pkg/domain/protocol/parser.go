package protocol

import (
	"errors"
	"strings"
)

// Block-level parse failures. Both cause the block to be dropped; neither is
// ever surfaced past Parse.
var (
	errUnterminated = errors.New("block has no terminator")
	errMalformed    = errors.New("block is malformed")
)

// Markup recognized in a model reply. Every marker occupies a whole line;
// surrounding prose is ignored.
const (
	markerCreate  = "<<<CREATE:"
	markerDelete  = "<<<DELETE:"
	markerRename  = "<<<RENAME:"
	markerFile    = "<<<FILE:"
	markerSearch  = "<<<SEARCH>>>"
	markerReplace = "<<<REPLACE>>>"
	markerEnd     = "<<<END>>>"

	markerClose = ">>>"
	renameArrow = " -> "

	fencePrefix = "```"
)

// Parse scans raw reply text for operation blocks and returns the decoded
// operations in the order their markers occur in the text, regardless of how
// the block kinds interleave. A single pass walks the lines: at each position
// the nearest next marker of any kind is consumed together with its block.
//
// Malformed blocks are dropped whole and the scan resumes past them;
// an unterminated block is dropped without producing anything. A caller that
// receives zero operations knows only that nothing parseable was found.
func Parse(text string) []Operation {
	lines := scanTarget(strings.Split(normalizeNewlines(text), "\n"))

	var ops []Operation
	for i := 0; i < len(lines); i++ {
		header := strings.TrimSpace(lines[i])

		var (
			op     Operation
			resume int
			err    error
		)
		switch {
		case isMarker(header, markerCreate):
			op, resume, err = parseCreate(lines, i, header)
		case isMarker(header, markerDelete):
			op, resume, err = parseDelete(lines, i, header)
		case isMarker(header, markerRename):
			op, resume, err = parseRename(lines, i, header)
		case isMarker(header, markerFile):
			op, resume, err = parseFile(lines, i, header)
		default:
			continue
		}

		if err == nil {
			ops = append(ops, op)
		}
		i = resume
	}
	return ops
}

// normalizeNewlines rewrites CRLF line endings so pasted replies from any
// platform split identically.
func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// scanTarget unwraps the payload when the text holds exactly one fenced block
// delimiter pair; any other fence count means the raw text is the target.
func scanTarget(lines []string) []string {
	var fences []int
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), fencePrefix) {
			fences = append(fences, i)
		}
	}
	if len(fences) == 2 {
		return lines[fences[0]+1 : fences[1]]
	}
	return lines
}

// isMarker reports whether the trimmed line opens the given marker form.
func isMarker(line, marker string) bool {
	return strings.HasPrefix(line, marker) && strings.HasSuffix(line, markerClose)
}

// markerArg extracts the text between the marker prefix and the closing
// delimiter: `<<<CREATE: src/a.ts>>>` yields `src/a.ts`.
func markerArg(line, marker string) string {
	return strings.TrimSpace(line[len(marker) : len(line)-len(markerClose)])
}

// findEnd returns the index of the block terminator line at or after start,
// or -1 when the block is unterminated.
func findEnd(lines []string, start int) int {
	for j := start; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == markerEnd {
			return j
		}
	}
	return -1
}

// interior joins the lines strictly between from and to.
func interior(lines []string, from, to int) string {
	if to <= from {
		return ""
	}
	return strings.Join(lines[from:to], "\n")
}

func parseCreate(lines []string, i int, header string) (Operation, int, error) {
	end := findEnd(lines, i+1)
	if end < 0 {
		return Operation{}, i, errUnterminated
	}
	op, err := NewCreate(markerArg(header, markerCreate), strings.TrimSpace(interior(lines, i+1, end)))
	if err != nil {
		return Operation{}, end, err
	}
	return op, end, nil
}

func parseDelete(lines []string, i int, header string) (Operation, int, error) {
	end := findEnd(lines, i+1)
	if end < 0 {
		return Operation{}, i, errUnterminated
	}
	op, err := NewDelete(markerArg(header, markerDelete))
	if err != nil {
		return Operation{}, end, err
	}
	return op, end, nil
}

func parseRename(lines []string, i int, header string) (Operation, int, error) {
	end := findEnd(lines, i+1)
	if end < 0 {
		return Operation{}, i, errUnterminated
	}
	arg := markerArg(header, markerRename)
	split := strings.Index(arg, renameArrow)
	if split < 0 {
		return Operation{}, end, errMalformed
	}
	from := strings.TrimSpace(arg[:split])
	to := strings.TrimSpace(arg[split+len(renameArrow):])
	op, err := NewRename(from, to)
	if err != nil {
		return Operation{}, end, err
	}
	return op, end, nil
}

// parseFile handles both FILE forms: with a SEARCH/REPLACE pair it becomes a
// search-replace, without one the interior overwrites the whole file.
func parseFile(lines []string, i int, header string) (Operation, int, error) {
	end := findEnd(lines, i+1)
	if end < 0 {
		return Operation{}, i, errUnterminated
	}
	path := markerArg(header, markerFile)

	searchAt, replaceAt := -1, -1
	for j := i + 1; j < end; j++ {
		switch strings.TrimSpace(lines[j]) {
		case markerSearch:
			if searchAt < 0 {
				searchAt = j
			}
		case markerReplace:
			if searchAt >= 0 && replaceAt < 0 {
				replaceAt = j
			}
		}
	}

	if searchAt < 0 {
		op, err := NewOverwrite(path, strings.TrimSpace(interior(lines, i+1, end)))
		if err != nil {
			return Operation{}, end, err
		}
		return op, end, nil
	}
	if replaceAt < 0 {
		return Operation{}, end, errMalformed
	}

	// Search and replacement segments keep their exact interior text: leading
	// whitespace in code is significant for verbatim matching.
	op, err := NewSearchReplace(path,
		interior(lines, searchAt+1, replaceAt),
		interior(lines, replaceAt+1, end))
	if err != nil {
		return Operation{}, end, err
	}
	return op, end, nil
}
