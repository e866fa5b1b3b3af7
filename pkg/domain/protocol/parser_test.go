package protocol

import (
	"reflect"
	"testing"
)

func TestParse_CreateBlock(t *testing.T) {
	text := "<<<CREATE: src/a.ts>>>\nconsole.log(1)\n<<<END>>>"

	ops := Parse(text)

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Kind != KindCreate {
		t.Errorf("kind = %q, want %q", ops[0].Kind, KindCreate)
	}
	if ops[0].Path != "src/a.ts" {
		t.Errorf("path = %q, want %q", ops[0].Path, "src/a.ts")
	}
	if ops[0].Content != "console.log(1)" {
		t.Errorf("content = %q, want %q", ops[0].Content, "console.log(1)")
	}
}

func TestParse_CreateContentTrimmed(t *testing.T) {
	text := "<<<CREATE: a.txt>>>\n\n  hello\nworld  \n\n<<<END>>>"

	ops := Parse(text)

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Content != "hello\nworld" {
		t.Errorf("content = %q, want %q", ops[0].Content, "hello\nworld")
	}
}

func TestParse_PreservesInterleavedOrder(t *testing.T) {
	text := `Some prose the model wrote.

<<<DELETE: old.go>>>
<<<END>>>

<<<CREATE: new.go>>>
package main
<<<END>>>

<<<FILE: keep.go>>>
<<<SEARCH>>>
foo
<<<REPLACE>>>
bar
<<<END>>>

<<<RENAME: a.go -> b.go>>>
<<<END>>>

<<<CREATE: second.go>>>
package second
<<<END>>>
`

	ops := Parse(text)

	want := []Kind{KindDelete, KindCreate, KindSearchReplace, KindRename, KindCreate}
	if len(ops) != len(want) {
		t.Fatalf("expected %d operations, got %d", len(want), len(ops))
	}
	for i, k := range want {
		if ops[i].Kind != k {
			t.Errorf("ops[%d].Kind = %q, want %q", i, ops[i].Kind, k)
		}
	}
}

func TestParse_RenameArgs(t *testing.T) {
	ops := Parse("<<<RENAME: src/old name.go -> src/new name.go>>>\n<<<END>>>")

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].From != "src/old name.go" || ops[0].To != "src/new name.go" {
		t.Errorf("rename = %q -> %q, want %q -> %q", ops[0].From, ops[0].To, "src/old name.go", "src/new name.go")
	}
}

func TestParse_SearchReplaceSegmentsExact(t *testing.T) {
	text := "<<<FILE: main.go>>>\n<<<SEARCH>>>\n\tif ok {\n\t\treturn\n\t}\n<<<REPLACE>>>\n\tif !ok {\n\t\treturn err\n\t}\n<<<END>>>"

	ops := Parse(text)

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	op := ops[0]
	if op.Kind != KindSearchReplace {
		t.Fatalf("kind = %q, want %q", op.Kind, KindSearchReplace)
	}
	if op.Search != "\tif ok {\n\t\treturn\n\t}" {
		t.Errorf("search = %q", op.Search)
	}
	if op.Replace != "\tif !ok {\n\t\treturn err\n\t}" {
		t.Errorf("replace = %q", op.Replace)
	}
}

func TestParse_FileWithoutSearchIsOverwrite(t *testing.T) {
	ops := Parse("<<<FILE: conf.yaml>>>\nkey: value\n<<<END>>>")

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Kind != KindOverwrite {
		t.Errorf("kind = %q, want %q", ops[0].Kind, KindOverwrite)
	}
	if ops[0].Content != "key: value" {
		t.Errorf("content = %q, want %q", ops[0].Content, "key: value")
	}
}

func TestParse_EmptyReplacementSegment(t *testing.T) {
	ops := Parse("<<<FILE: a.go>>>\n<<<SEARCH>>>\ndead code\n<<<REPLACE>>>\n<<<END>>>")

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Replace != "" {
		t.Errorf("replace = %q, want empty", ops[0].Replace)
	}
}

func TestParse_DropsMalformedBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"rename without arrow", "<<<RENAME: a.go b.go>>>\n<<<END>>>", 0},
		{"file with search but no replace", "<<<FILE: a.go>>>\n<<<SEARCH>>>\nfoo\n<<<END>>>", 0},
		{"create with empty path", "<<<CREATE: >>>\nx\n<<<END>>>", 0},
		{"unterminated create", "<<<CREATE: a.go>>>\npackage a", 0},
		{"prose only", "no markers here at all", 0},
		{"empty input", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.text); len(got) != tt.want {
				t.Errorf("Parse(%q) yielded %d operations, want %d", tt.text, len(got), tt.want)
			}
		})
	}
}

func TestParse_MalformedBlockDoesNotPoisonRest(t *testing.T) {
	text := "<<<RENAME: missing-arrow>>>\n<<<END>>>\n<<<DELETE: gone.go>>>\n<<<END>>>"

	ops := Parse(text)

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Kind != KindDelete || ops[0].Path != "gone.go" {
		t.Errorf("surviving op = %+v, want delete gone.go", ops[0])
	}
}

func TestParse_FirstTerminatorClosesEarliestOpener(t *testing.T) {
	// A marker-looking line inside an open block is content, not a new block:
	// the nearest END terminates the CREATE and the interior DELETE line
	// rides along as file content.
	text := "<<<CREATE: a.go>>>\npackage a\n<<<DELETE: b.go>>>\n<<<END>>>"

	ops := Parse(text)

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Kind != KindCreate {
		t.Errorf("kind = %q, want %q", ops[0].Kind, KindCreate)
	}
	if ops[0].Content != "package a\n<<<DELETE: b.go>>>" {
		t.Errorf("content = %q", ops[0].Content)
	}
}

func TestParse_UnterminatedTailBlockDropped(t *testing.T) {
	text := "<<<DELETE: a.txt>>>\n<<<END>>>\n<<<CREATE: b.txt>>>\nleft open"

	ops := Parse(text)

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Kind != KindDelete || ops[0].Path != "a.txt" {
		t.Errorf("surviving op = %+v, want delete a.txt", ops[0])
	}
}

func TestParse_SingleFencePairUnwrapped(t *testing.T) {
	text := "The model says:\n```\n<<<CREATE: a.txt>>>\nhi\n<<<END>>>\n```\ntrailing prose"

	ops := Parse(text)

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Path != "a.txt" || ops[0].Content != "hi" {
		t.Errorf("op = %+v", ops[0])
	}
}

func TestParse_FenceCountOtherThanOnePairScansRaw(t *testing.T) {
	// Two fence pairs: markers inside both still parse because the raw text
	// is the scan target.
	text := "```\n<<<CREATE: a.txt>>>\na\n<<<END>>>\n```\nmiddle\n```\n<<<CREATE: b.txt>>>\nb\n<<<END>>>\n```"

	ops := Parse(text)

	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}
	got := []string{ops[0].Path, ops[1].Path}
	if !reflect.DeepEqual(got, []string{"a.txt", "b.txt"}) {
		t.Errorf("paths = %v", got)
	}
}

func TestParse_FencedWithLanguageTag(t *testing.T) {
	ops := Parse("```text\n<<<DELETE: x>>>\n<<<END>>>\n```")

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
}

func TestParse_CRLFInput(t *testing.T) {
	ops := Parse("<<<CREATE: a.txt>>>\r\nline one\r\nline two\r\n<<<END>>>\r\n")

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Content != "line one\nline two" {
		t.Errorf("content = %q", ops[0].Content)
	}
}

func TestParse_IndentedMarkersRecognized(t *testing.T) {
	ops := Parse("  <<<DELETE: a.txt>>>\n  <<<END>>>")

	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
}
