package protocol

import (
	"reflect"
	"testing"
)

func TestOperationConstructors_RejectMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (Operation, error)
		wantErr bool
	}{
		{"create ok", func() (Operation, error) { return NewCreate("a.txt", "x") }, false},
		{"create empty content ok", func() (Operation, error) { return NewCreate("a.txt", "") }, false},
		{"create no path", func() (Operation, error) { return NewCreate("", "x") }, true},
		{"delete ok", func() (Operation, error) { return NewDelete("a.txt") }, false},
		{"delete no path", func() (Operation, error) { return NewDelete("") }, true},
		{"rename ok", func() (Operation, error) { return NewRename("a", "b") }, false},
		{"rename no source", func() (Operation, error) { return NewRename("", "b") }, true},
		{"rename no destination", func() (Operation, error) { return NewRename("a", "") }, true},
		{"search-replace ok", func() (Operation, error) { return NewSearchReplace("a", "x", "y") }, false},
		{"search-replace empty replace ok", func() (Operation, error) { return NewSearchReplace("a", "x", "") }, false},
		{"search-replace empty search", func() (Operation, error) { return NewSearchReplace("a", "", "y") }, true},
		{"overwrite ok", func() (Operation, error) { return NewOverwrite("a", "x") }, false},
		{"overwrite no path", func() (Operation, error) { return NewOverwrite("", "x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := tt.build()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err == nil {
				if vErr := op.Validate(); vErr != nil {
					t.Errorf("constructed operation failed Validate: %v", vErr)
				}
			}
		})
	}
}

func TestOperation_ValidateUnknownKind(t *testing.T) {
	op := Operation{Kind: Kind("patch"), Path: "a.txt"}
	if err := op.Validate(); err == nil {
		t.Error("expected error for unknown kind")
	}

	var zero Operation
	if err := zero.Validate(); err == nil {
		t.Error("expected error for zero-value operation")
	}
}

func TestOperation_AffectedPaths(t *testing.T) {
	create, _ := NewCreate("src/a.go", "x")
	rename, _ := NewRename("old.go", "new.go")

	if got := create.AffectedPaths(); !reflect.DeepEqual(got, []string{"src/a.go"}) {
		t.Errorf("create affected = %v", got)
	}
	if got := rename.AffectedPaths(); !reflect.DeepEqual(got, []string{"old.go", "new.go"}) {
		t.Errorf("rename affected = %v", got)
	}
}

func TestKind_IsValid(t *testing.T) {
	for _, k := range []Kind{KindCreate, KindDelete, KindRename, KindSearchReplace, KindOverwrite} {
		if !k.IsValid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if Kind("diff").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}
